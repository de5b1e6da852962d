package mcpserver

// NoteFormat describes the Markdown note files the vault is made of, for
// LLM consumers that create vocabulary or sentence notes.
const NoteFormat = `# Vault Note Format

Every note is one Markdown file (` + "`" + `.md` + "`" + `) under the vault root.

## Structure

` + "```" + `markdown
---
deck: Japanese::Words   # OPTIONAL - defaults to the directory path, "/" becomes "::"
cards: 1                # OPTIONAL - number of cards of the note, default 1
reviews: 0              # OPTIONAL - how often the note was reviewed, default 0
---
## Word
猫
## Meaning
cat
` + "```" + `

## Rules

1. **Frontmatter is optional.** When present, the ` + "`" + `---` + "`" + ` fences must be the first
   thing in the file.
2. **Fields** start at a ` + "`" + `## Name` + "`" + ` heading and run to the next heading. Values are
   trimmed. A file without headings has a single field named ` + "`" + `Text` + "`" + `.
3. **Decks** nest with ` + "`" + `::` + "`" + `. Selecting deck ` + "`" + `A` + "`" + ` also selects ` + "`" + `A::B` + "`" + `.
4. **Known words** are read from one field of the words deck; only notes with
   ` + "`" + `reviews > 0` + "`" + ` count unless unreviewed notes are included.
5. **Sentence cards** are suspended while their note holds a word that is not known.
6. **Encoding** is UTF-8. Hidden files and directories are ignored.
`
