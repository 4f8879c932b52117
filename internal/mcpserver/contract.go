package mcpserver

// PermissionContract describes the access-control model that LLM consumers
// should respect before commenting or deciding on a document.
const PermissionContract = `# Folio Permission Contract

Every user holds exactly one effective level on every document.

## Levels

| Level     | Allows                                      |
|-----------|---------------------------------------------|
| ` + "`NONE`" + `    | nothing; the document is invisible          |
| ` + "`VIEW`" + `    | reading the document, comments and search   |
| ` + "`COMMENT`" + ` | everything VIEW allows, plus new comments   |
| ` + "`DECIDE`" + `  | everything COMMENT allows, plus APPROVED/REJECTED decisions |

Levels are ordered: NONE < VIEW < COMMENT < DECIDE. A higher level includes
every capability of the lower ones.

## Resolution

1. An administrator may set an override for a (user, document) pair.
2. If an override exists, its level is the effective level.
3. Otherwise the deployment default applies.
4. An unrecognized level is rejected. It never grants access.

## Comments

- A comment is bound to the document version it was written against
  (` + "`fileVersion`" + `). It is never moved to a newer version.
- A comment may carry a marker: a 1-based ` + "`pageNumber`" + ` and an
  (x, y) position on that page. The page must exist in that version.
- Comments are immutable. Corrections are posted as new comments.

Call ` + "`check_permission`" + ` before ` + "`add_comment`" + ` when unsure.
`
