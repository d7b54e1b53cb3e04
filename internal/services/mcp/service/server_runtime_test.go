package service

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	platformgrpc "github.com/louisbranch/roll/internal/platform/grpc"
	"github.com/louisbranch/roll/internal/services/dice/api/grpc/rolls"
	"github.com/louisbranch/roll/internal/services/dice/api/grpc/rollv1"
	"github.com/louisbranch/roll/internal/services/dice/service"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"github.com/louisbranch/roll/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type memoryStore struct {
	records map[string]storage.RollRecord
	order   []string
}

func (m *memoryStore) PutRoll(_ context.Context, r storage.RollRecord) error {
	if m.records == nil {
		m.records = map[string]storage.RollRecord{}
	}
	m.records[r.ID] = r
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memoryStore) GetRoll(_ context.Context, id string) (storage.RollRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return storage.RollRecord{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) ListRolls(_ context.Context, pageSize int, _ string) (storage.RollPage, error) {
	var page storage.RollPage
	for i := len(m.order) - 1; i >= 0 && len(page.Rolls) < pageSize; i-- {
		page.Rolls = append(page.Rolls, m.records[m.order[i]])
	}
	return page, nil
}

func (m *memoryStore) Close() error { return nil }

// startDiceServer serves roll.v1.DiceService with in-memory history.
func startDiceServer(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	grpcServer, healthServer := platformgrpc.NewServer()
	rollv1.RegisterDiceServiceServer(grpcServer, rolls.NewService(service.New(service.WithStore(&memoryStore{}))))
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = platformgrpc.Serve(ctx, grpcServer, listener)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return listener.Addr().String()
}

// connectSession runs the MCP server over in-memory transports and connects a client.
func connectSession(t *testing.T, cfg Config) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- runWithTransport(ctx, cfg, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("run returned error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("timeout waiting for MCP server shutdown")
		}
	})
	return session
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func decodeStructured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var out T
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode structured content %s: %v", data, err)
	}
	return out
}

func TestRunWithTransportListsDiceTools(t *testing.T) {
	session := connectSession(t, Config{DiceAddr: startDiceServer(t)})

	res, err := session.ListTools(testContext(t), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{"dice_version", "dice_roll", "dice_roll_multiple", "dice_roll_individual", "dice_roll_notation"} {
		if !got[name] {
			t.Fatalf("missing tool %s in %v", name, got)
		}
	}
}

func TestRollNotationToolIsReplayable(t *testing.T) {
	session := connectSession(t, Config{DiceAddr: startDiceServer(t)})
	ctx := testContext(t)

	call := func() domain.RollResult {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "dice_roll_notation",
			Arguments: map[string]any{"notation": "4d6-1", "seed": 1234},
		})
		if err != nil {
			t.Fatalf("call tool: %v", err)
		}
		if res.IsError {
			t.Fatalf("tool error: %+v", res.Content)
		}
		return decodeStructured[domain.RollResult](t, res)
	}
	first, second := call(), call()
	if first.Total != second.Total || len(first.Individual) != 4 {
		t.Fatalf("replay mismatch: %+v vs %+v", first, second)
	}
	if first.Notation != "4d6-1" || first.Rng.SeedUsed != 1234 || first.Rng.SeedSource != "client" {
		t.Fatalf("unexpected result %+v", first)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct history ids")
	}
}

func TestInvalidNotationIsToolError(t *testing.T) {
	session := connectSession(t, Config{DiceAddr: startDiceServer(t)})

	res, err := session.CallTool(testContext(t), &mcp.CallToolParams{
		Name:      "dice_roll_notation",
		Arguments: map[string]any{"notation": "d6"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "d6") {
		t.Fatalf("unexpected error content %+v", res.Content)
	}
}

func TestHistoryResources(t *testing.T) {
	session := connectSession(t, Config{DiceAddr: startDiceServer(t)})
	ctx := testContext(t)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "dice_roll",
		Arguments: map[string]any{"sides": 12},
	})
	if err != nil || res.IsError {
		t.Fatalf("roll: %v %+v", err, res)
	}
	rolled := decodeStructured[domain.RollResult](t, res)

	read, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "roll://" + rolled.ID})
	if err != nil {
		t.Fatalf("read roll: %v", err)
	}
	var got domain.RollResult
	if err := json.Unmarshal([]byte(read.Contents[0].Text), &got); err != nil {
		t.Fatalf("decode roll: %v", err)
	}
	if got.ID != rolled.ID || got.Total != rolled.Total || got.Sides != 12 {
		t.Fatalf("roll resource = %+v, want %+v", got, rolled)
	}

	read, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "roll://history"})
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	var history domain.RollHistoryPayload
	if err := json.Unmarshal([]byte(read.Contents[0].Text), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Rolls) != 1 || history.Rolls[0].ID != rolled.ID {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "carrier-pigeon"})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected unsupported transport error, got %v", err)
	}
}

func TestServeWithTransportRequiresServer(t *testing.T) {
	var s *Server
	if err := s.serveWithTransport(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestDiceAddressDefault(t *testing.T) {
	if got := diceAddress("  "); got != "localhost:8090" {
		t.Fatalf("diceAddress = %q", got)
	}
	if got := diceAddress("dice:9000"); got != "dice:9000" {
		t.Fatalf("diceAddress = %q", got)
	}
}
