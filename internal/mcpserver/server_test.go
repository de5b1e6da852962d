package mcpserver

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/kwm/internal/cardservice"
	"github.com/starford/kwm/internal/manager"
	"github.com/starford/kwm/internal/testutil"
	"github.com/starford/kwm/internal/tokenize"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	vaultDir, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	testutil.SeedVault(t, vaultDir, store, db)

	svc := cardservice.NewService(db, store, manager.Options{
		SentencesDeck: "Sentences",
		WordsDeck:     "Words",
		WordField:     "Word",
		Strategy:      tokenize.Kanji,
	}, nil)
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "update_managed_cards":
		result, err = srv.updateManagedCards(ctx, req)
	case "list_decks":
		result, err = srv.listDecks(ctx, req)
	case "list_fields":
		result, err = srv.listFields(ctx, req)
	case "undo_changes":
		result, err = srv.undoChanges(ctx, req)
	case "sync_vault":
		result, err = srv.syncVault(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "get_note_format":
		result, err = srv.getNoteFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

var tokenRe = regexp.MustCompile(`Undo token: (\S+)`)

func TestUpdateAndUndo(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "update_managed_cards", map[string]any{})
	if r.IsError {
		t.Fatalf("update failed: %s", resultText(r))
	}
	text := resultText(r)
	m := tokenRe.FindStringSubmatch(text)
	if m == nil {
		t.Fatalf("no undo token in %q", text)
	}

	r = callTool(t, srv, "undo_changes", map[string]any{"token": m[1]})
	if got := resultText(r); got != "restored 2 cards" {
		t.Errorf("undo = %q", got)
	}

	r = callTool(t, srv, "undo_changes", map[string]any{"token": m[1]})
	if !r.IsError {
		t.Error("expected error for repeated undo")
	}
}

func TestUpdate_DryRunAndOverrides(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "update_managed_cards", map[string]any{
		"dry_run":            true,
		"include_unreviewed": true,
		"strategy":           "kanji",
	})
	if r.IsError {
		t.Fatalf("update failed: %s", resultText(r))
	}
	if text := resultText(r); !strings.Contains(text, "Dry run") {
		t.Errorf("result = %q", text)
	}

	r = callTool(t, srv, "update_managed_cards", map[string]any{"strategy": "mecab"})
	if !r.IsError {
		t.Error("expected error for unknown strategy")
	}
}

func TestUpdate_DomainErrorSeverity(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "update_managed_cards", map[string]any{"sentences_deck": "Nope"})
	if !r.IsError {
		t.Fatal("expected error for empty sentence deck")
	}
	if text := resultText(r); !strings.HasPrefix(text, "warning: ") {
		t.Errorf("error = %q, want warning prefix", text)
	}
}

func TestListDecksAndFields(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_decks", map[string]any{})
	if got := resultText(r); got != "Sentences\nWords" {
		t.Errorf("decks = %q", got)
	}

	r = callTool(t, srv, "list_fields", map[string]any{"deck": "Words"})
	if got := resultText(r); got != "Word\nMeaning" {
		t.Errorf("fields = %q", got)
	}

	r = callTool(t, srv, "list_fields", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing deck argument")
	}
}

func TestSyncVault(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "sync_vault", map[string]any{})
	if r.IsError || !strings.Contains(resultText(r), `"indexed": 0`) {
		t.Errorf("sync = %q", resultText(r))
	}
}

func TestGetNoteFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note_format", map[string]any{})
	if !strings.Contains(resultText(r), "## Word") {
		t.Error("note format missing field example")
	}
}

func TestCreateAndDeleteNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{
		"path":    "Words/fish.md",
		"content": "---\nreviews: 1\n---\n## Word\n魚\n",
	})
	if r.IsError {
		t.Fatalf("create_note: %s", resultText(r))
	}

	r = callTool(t, srv, "create_note", map[string]any{"path": "Words/fish.md", "content": "魚"})
	if !r.IsError || !strings.Contains(resultText(r), "already exists") {
		t.Errorf("duplicate create = %q", resultText(r))
	}

	r = callTool(t, srv, "update_managed_cards", map[string]any{"dry_run": true})
	if r.IsError || !strings.Contains(resultText(r), "Dry run") {
		t.Fatalf("update = %q", resultText(r))
	}

	r = callTool(t, srv, "delete_note", map[string]any{"path": "Words/fish.md"})
	if r.IsError {
		t.Fatalf("delete_note: %s", resultText(r))
	}
	r = callTool(t, srv, "delete_note", map[string]any{"path": "Words/fish.md"})
	if !r.IsError {
		t.Error("expected error deleting a missing note")
	}
	r = callTool(t, srv, "create_note", map[string]any{"path": "Words/fish.md"})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
}
