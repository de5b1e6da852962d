// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the known-word manager for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/cardservice"
	"github.com/starford/kwm/internal/tokenize"
)

const noteFormatURI = "kwm://note-format"

// Server wraps the MCP server with card manager tools.
type Server struct {
	mcp *server.MCPServer
	svc *cardservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *cardservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"kwm",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	strategies := make([]string, len(tokenize.Strategies))
	for i, st := range tokenize.Strategies {
		strategies[i] = st.String()
	}

	s.mcp.AddTool(mcp.NewTool("update_managed_cards",
		mcp.WithDescription("Suspend sentence cards that contain unknown words and unsuspend the ones "+
			"that became studyable. Omitted options fall back to the last-used settings. "+
			"Returns a report and a token for undo_changes."),
		mcp.WithString("sentences_deck", mcp.Description("Deck holding the sentence cards (sub-decks included)")),
		mcp.WithString("words_deck", mcp.Description("Deck holding the known vocabulary")),
		mcp.WithString("word_field", mcp.Description("Field of the vocabulary notes that holds the word")),
		mcp.WithString("strategy", mcp.Description("How text is split into words"), mcp.Enum(strategies...)),
		mcp.WithBoolean("require_all_known", mcp.Description("Also suspend sentences that add no new word")),
		mcp.WithBoolean("include_unreviewed", mcp.Description("Count vocabulary that was never reviewed as known")),
		mcp.WithBoolean("dry_run", mcp.Description("Only report what would change")),
	), s.updateManagedCards)

	s.mcp.AddTool(mcp.NewTool("list_decks",
		mcp.WithDescription("List every deck in the collection."),
	), s.listDecks)

	s.mcp.AddTool(mcp.NewTool("list_fields",
		mcp.WithDescription("List the field names used by notes of a deck."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Deck name, e.g. Japanese::Words")),
	), s.listFields)

	s.mcp.AddTool(mcp.NewTool("undo_changes",
		mcp.WithDescription("Revert every card change of one update."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Token returned by update_managed_cards")),
	), s.undoChanges)

	s.mcp.AddTool(mcp.NewTool("sync_vault",
		mcp.WithDescription("Re-import the Markdown vault into the card collection."),
	), s.syncVault)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a vocabulary or sentence note in the vault and import it. "+
			"Content MUST follow the vault note format; read it first via get_note_format "+
			"or the "+noteFormatURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the new note (must end with .md), e.g. Words/cat.md")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the vault note format")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note from the vault together with its cards."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the note")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns the Markdown note format of the vault. "+
			"Call this before create_note."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(noteFormatURI, "Vault Note Format",
			mcp.WithResourceDescription("Markdown format of vocabulary and sentence notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError renders err for the model. Domain errors keep their message and
// severity; the rest are passed through.
func toolError(err error) *mcp.CallToolResult {
	if sev, ok := apperr.SeverityOf(err); ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", sev, err.Error()))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) updateManagedCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var ov cardservice.Overrides
	if v, ok := args["sentences_deck"].(string); ok {
		ov.SentencesDeck = &v
	}
	if v, ok := args["words_deck"].(string); ok {
		ov.WordsDeck = &v
	}
	if v, ok := args["word_field"].(string); ok {
		ov.WordField = &v
	}
	if v, ok := args["strategy"].(string); ok {
		st, err := tokenize.ParseStrategy(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ov.Strategy = &st
	}
	if v, ok := args["require_all_known"].(bool); ok {
		ov.RequireAllKnown = &v
	}
	if v, ok := args["include_unreviewed"].(bool); ok {
		ov.IncludeUnreviewed = &v
	}
	dryRun := req.GetBool("dry_run", false)

	changes, err := s.svc.Update(ctx, ov, dryRun)
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString(changes.Report)
	switch {
	case dryRun:
		b.WriteString("\nDry run: no cards were changed.\n")
	case changes.Token != "":
		fmt.Fprintf(&b, "\nUndo token: %s\n", changes.Token)
	default:
		b.WriteString("\nNo cards needed changing.\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listDecks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	decks, err := s.svc.ListDecks(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(decks) == 0 {
		return mcp.NewToolResultText("no decks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(decks, "\n")), nil
}

func (s *Server) listFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck, err := req.RequireString("deck")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := s.svc.ListFields(ctx, deck)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(strings.Join(fields, "\n")), nil
}

func (s *Server) undoChanges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := req.RequireString("token")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.Undo(ctx, token)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("restored %d cards", n)), nil
}

func (s *Server) syncVault(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Sync(ctx)
	if err != nil {
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.CreateNote(ctx, path, []byte(content)); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created %s", path)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, path); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", path)), nil
}

func (s *Server) getNoteFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
