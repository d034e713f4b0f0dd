package mcpserver

// GraphContract describes the node and edge model that LLM consumers see
// when querying the research graph.
const GraphContract = `# NoteGraph Research Graph Contract

NoteGraph stores research material as a directed graph of nodes and
labelled edges backed by full-text and vector indices.

## Nodes

Every node has:

- ` + "`" + `id` + "`" + ` — opaque UUID string, stable for the node's lifetime.
- ` + "`" + `type` + "`" + ` — ` + "`" + `source` + "`" + ` for ingested web pages, ` + "`" + `user_item` + "`" + ` for
  user-authored notes and canvas items.
- ` + "`" + `title` + "`" + ` — human-readable display name; for sources this is the
  page <title>.
- ` + "`" + `contentPath` + "`" + ` — artifact filename (` + "`" + `<id>.md` + "`" + `) when the node has a
  content body; empty otherwise.
- ` + "`" + `metadata` + "`" + ` — free-form JSON object. Ingested sources carry
  ` + "`" + `url` + "`" + `, ` + "`" + `chunk_count` + "`" + `, and ` + "`" + `provider` + "`" + `; canvas items may carry
  ` + "`" + `x` + "`" + `/` + "`" + `y` + "`" + ` coordinates.
- ` + "`" + `createdAt` + "`" + ` / ` + "`" + `updatedAt` + "`" + ` — UTC timestamps with millisecond
  precision and a trailing Z.

## Edges

Edges are directed and labelled (default label ` + "`" + `related` + "`" + `). At most one
edge exists per ordered (source, target) pair.

## Search

The ` + "`" + `search_nodes` + "`" + ` tool accepts a mode:

- ` + "`" + `fuzzy` + "`" + ` — keyword full-text match with highlighted snippets.
- ` + "`" + `semantic` + "`" + ` — embedding nearest-neighbour over ingested chunks.
- ` + "`" + `hybrid` + "`" + ` — both, fused into one descending-score list (default).

Scores from the two modes are not on a common scale; use them for
ordering, not as absolute relevance.
`
