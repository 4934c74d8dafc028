package lsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap/zaptest"

	"github.com/conduit-lang/derivewhere/internal/tooling"
)

const docURI = protocol.DocumentURI("file:///workspace/models.dw.yaml")

const docSource = `items:
  - name: Wrapper
    generics: [T]
    attrs: ["derive_where(Clone; T)"]
    fields:
      - {name: inner, type: T}
  - name: Plain
    attrs: ["derive_where(Debug)"]
    fields:
      - {name: id, type: u32}
`

type testClient struct {
	conn        jsonrpc2.Conn
	diagnostics chan protocol.PublishDiagnosticsParams
	done        chan error
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverSide, clientSide := net.Pipe()
	server := NewServer(tooling.NewAPI(), zaptest.NewLogger(t))

	tc := &testClient{
		diagnostics: make(chan protocol.PublishDiagnosticsParams, 8),
		done:        make(chan error, 1),
	}
	go func() { tc.done <- server.Serve(ctx, serverSide) }()

	tc.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(clientSide))
	tc.conn.Go(ctx, func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() == protocol.MethodTextDocumentPublishDiagnostics {
			var params protocol.PublishDiagnosticsParams
			if err := json.Unmarshal(req.Params(), &params); err == nil {
				tc.diagnostics <- params
			}
		}
		return reply(ctx, nil, nil)
	})
	t.Cleanup(func() { tc.conn.Close() })

	var result protocol.InitializeResult
	_, err := tc.conn.Call(ctx, protocol.MethodInitialize, protocol.InitializeParams{RootPath: "/workspace"}, &result)
	require.NoError(t, err)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "derivewhere-lsp", result.ServerInfo.Name)

	return tc
}

func (tc *testClient) nextDiagnostics(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()
	select {
	case params := <-tc.diagnostics:
		return params
	case <-time.After(2 * time.Second):
		t.Fatal("no diagnostics published")
		return protocol.PublishDiagnosticsParams{}
	}
}

func (tc *testClient) open(t *testing.T, text string) {
	t.Helper()
	err := tc.conn.Notify(context.Background(), protocol.MethodTextDocumentDidOpen, protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: docURI, LanguageID: "yaml", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func position(line, character uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		Position:     protocol.Position{Line: line, Character: character},
	}
}

func TestServerInitialization(t *testing.T) {
	server := NewServer(nil, nil)
	require.NotNil(t, server.api)
	require.NotNil(t, server.logger)

	caps := server.capabilities
	assert.NotNil(t, caps.CompletionProvider)
	assert.NotNil(t, caps.DefinitionProvider)
	assert.Equal(t, true, caps.HoverProvider)
	assert.Equal(t, true, caps.ReferencesProvider)
	assert.Equal(t, true, caps.DocumentSymbolProvider)
	assert.Equal(t, true, caps.WorkspaceSymbolProvider)
}

func TestServerPublishesDiagnostics(t *testing.T) {
	tc := startServer(t)
	tc.open(t, docSource)

	params := tc.nextDiagnostics(t)
	assert.Equal(t, docURI, params.URI)
	require.Len(t, params.Diagnostics, 1)

	d := params.Diagnostics[0]
	assert.Equal(t, "ITM100", d.Code)
	assert.Equal(t, "derivewhere", d.Source)
	assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
	assert.Equal(t, uint32(6), d.Range.Start.Line)

	fixed := docSource + "    generics: [U]\n"
	err := tc.conn.Notify(context.Background(), protocol.MethodTextDocumentDidChange, protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: fixed}},
	})
	require.NoError(t, err)
	assert.Empty(t, tc.nextDiagnostics(t).Diagnostics)

	err = tc.conn.Notify(context.Background(), protocol.MethodTextDocumentDidClose, protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
	require.NoError(t, err)
	assert.Empty(t, tc.nextDiagnostics(t).Diagnostics)
}

func TestServerHoverAndSymbols(t *testing.T) {
	tc := startServer(t)
	tc.open(t, docSource)
	tc.nextDiagnostics(t)
	ctx := context.Background()

	var hover protocol.Hover
	_, err := tc.conn.Call(ctx, protocol.MethodTextDocumentHover, protocol.HoverParams{TextDocumentPositionParams: position(1, 10)}, &hover)
	require.NoError(t, err)
	assert.Equal(t, protocol.Markdown, hover.Contents.Kind)
	assert.Contains(t, hover.Contents.Value, "impl<T> ::core::clone::Clone for Wrapper<T>")

	var symbols []protocol.DocumentSymbol
	_, err = tc.conn.Call(ctx, protocol.MethodTextDocumentDocumentSymbol, protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	}, &symbols)
	require.NoError(t, err)
	require.Len(t, symbols, 4)
	assert.Equal(t, "Wrapper", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindStruct, symbols[0].Kind)

	var found []protocol.SymbolInformation
	_, err = tc.conn.Call(ctx, protocol.MethodWorkspaceSymbol, protocol.WorkspaceSymbolParams{Query: "plain"}, &found)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, docURI, found[0].Location.URI)

	var completions protocol.CompletionList
	_, err = tc.conn.Call(ctx, protocol.MethodTextDocumentCompletion, protocol.CompletionParams{TextDocumentPositionParams: position(3, 27)}, &completions)
	require.NoError(t, err)
	assert.NotEmpty(t, completions.Items)
}

func TestServerUnknownMethod(t *testing.T) {
	tc := startServer(t)

	_, err := tc.conn.Call(context.Background(), "derivewhere/unknown", nil, nil)
	assert.Error(t, err)
}

func TestServerExit(t *testing.T) {
	tc := startServer(t)

	require.NoError(t, tc.conn.Notify(context.Background(), protocol.MethodExit, nil))

	select {
	case <-tc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop on exit")
	}
}
