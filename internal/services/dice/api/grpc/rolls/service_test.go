package rolls

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/roll/internal/platform/errors"
	"github.com/louisbranch/roll/internal/services/dice/api/grpc/rollv1"
	"github.com/louisbranch/roll/internal/services/dice/service"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
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

func startServer(t *testing.T, svc *service.Service) *rollv1.DiceServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	rollv1.RegisterDiceServiceServer(server, NewService(svc))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return rollv1.NewDiceServiceClient(conn)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("new struct: %v", err)
	}
	return s
}

func errorReason(t *testing.T, err error) (codes.Code, string, string) {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected status error, got %v", err)
	}
	var reason, message string
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			reason = d.GetReason()
		case *errdetails.LocalizedMessage:
			message = d.GetMessage()
		}
	}
	return st.Code(), reason, message
}

func TestVersion(t *testing.T) {
	client := startServer(t, service.New())
	out, err := client.Invoke(testContext(t), rollv1.MethodVersion, nil)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	resp, err := rollv1.ParseVersionResponse(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Version == "" {
		t.Fatal("expected version")
	}
}

func TestRollMethodsWithSeedAreReplayable(t *testing.T) {
	client := startServer(t, service.New())
	ctx := testContext(t)
	tests := []struct {
		method string
		fields map[string]any
		check  func(t *testing.T, roll rollv1.Roll)
	}{
		{
			method: rollv1.MethodRoll,
			fields: map[string]any{"sides": 20, "seed": "12345"},
			check: func(t *testing.T, roll rollv1.Roll) {
				if roll.Total < 1 || roll.Total > 20 || roll.Count != 1 {
					t.Fatalf("unexpected roll: %+v", roll)
				}
			},
		},
		{
			method: rollv1.MethodRollMultiple,
			fields: map[string]any{"count": 3, "sides": 6, "seed": 9},
			check: func(t *testing.T, roll rollv1.Roll) {
				if roll.Total < 3 || roll.Total > 18 || roll.Individual != nil {
					t.Fatalf("unexpected roll: %+v", roll)
				}
			},
		},
		{
			method: rollv1.MethodRollIndividual,
			fields: map[string]any{"count": 4, "sides": 8, "seed": 9},
			check: func(t *testing.T, roll rollv1.Roll) {
				if len(roll.Individual) != 4 {
					t.Fatalf("expected 4 dice, got %v", roll.Individual)
				}
			},
		},
		{
			method: rollv1.MethodRollNotation,
			fields: map[string]any{"notation": "2d10+5", "seed": "18446744073709551615"},
			check: func(t *testing.T, roll rollv1.Roll) {
				if roll.Total != roll.Sum+5 || roll.Notation != "2d10+5" || roll.SeedUsed != 18446744073709551615 {
					t.Fatalf("unexpected roll: %+v", roll)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			var totals []int
			for i := 0; i < 2; i++ {
				out, err := client.Invoke(ctx, tt.method, mustStruct(t, tt.fields))
				if err != nil {
					t.Fatalf("invoke: %v", err)
				}
				roll, err := rollv1.ParseRoll(out)
				if err != nil {
					t.Fatalf("parse roll: %v", err)
				}
				if roll.SeedSource != storage.SeedSourceClient {
					t.Fatalf("expected client seed source, got %q", roll.SeedSource)
				}
				tt.check(t, roll)
				totals = append(totals, roll.Total)
			}
			if totals[0] != totals[1] {
				t.Fatalf("expected replayable totals, got %v", totals)
			}
		})
	}
}

func TestRollErrors(t *testing.T) {
	client := startServer(t, service.New(service.WithMaxCount(50)))
	ctx := testContext(t)
	tests := []struct {
		name   string
		method string
		fields map[string]any
		code   codes.Code
		reason apperrors.Code
	}{
		{"missing sides", rollv1.MethodRoll, map[string]any{}, codes.InvalidArgument, apperrors.CodeDiceNullPointer},
		{"missing notation", rollv1.MethodRollNotation, map[string]any{}, codes.InvalidArgument, apperrors.CodeDiceNullPointer},
		{"zero sides", rollv1.MethodRoll, map[string]any{"sides": 0}, codes.InvalidArgument, apperrors.CodeDiceInvalidSides},
		{"count before sides", rollv1.MethodRollMultiple, map[string]any{"count": 0, "sides": 0}, codes.InvalidArgument, apperrors.CodeDiceInvalidCount},
		{"bad notation", rollv1.MethodRollNotation, map[string]any{"notation": "1d6+1+2"}, codes.InvalidArgument, apperrors.CodeDiceInvalidNotation},
		{"too many dice", rollv1.MethodRollIndividual, map[string]any{"count": 51, "sides": 6}, codes.InvalidArgument, apperrors.CodeDiceCountTooLarge},
		{"bad seed", rollv1.MethodRoll, map[string]any{"sides": 6, "seed": -1}, codes.InvalidArgument, apperrors.CodeSeedOutOfRange},
		{"bad field type", rollv1.MethodRoll, map[string]any{"sides": "six"}, codes.InvalidArgument, apperrors.CodeInvalidRequest},
		{"history disabled", rollv1.MethodGetRoll, map[string]any{"id": "x"}, codes.NotFound, apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Invoke(ctx, tt.method, mustStruct(t, tt.fields))
			code, reason, message := errorReason(t, err)
			if code != tt.code {
				t.Fatalf("expected %s, got %s", tt.code, code)
			}
			if reason != string(tt.reason) {
				t.Fatalf("expected reason %s, got %s", tt.reason, reason)
			}
			if message == "" {
				t.Fatal("expected localized message")
			}
		})
	}
}

func TestErrorsAreLocalized(t *testing.T) {
	client := startServer(t, service.New())
	ctx := metadata.AppendToOutgoingContext(testContext(t), rollv1.LocaleMetadataKey, "pt-BR")
	_, err := client.Invoke(ctx, rollv1.MethodRoll, mustStruct(t, map[string]any{"sides": -2}))
	_, _, message := errorReason(t, err)
	if !strings.Contains(message, "Um dado precisa") || !strings.Contains(message, "-2") {
		t.Fatalf("expected portuguese message, got %q", message)
	}
}

func TestHistoryMethods(t *testing.T) {
	client := startServer(t, service.New(service.WithStore(&memoryStore{})))
	ctx := testContext(t)

	out, err := client.Invoke(ctx, rollv1.MethodRollNotation, mustStruct(t, map[string]any{"notation": "3d4-1"}))
	if err != nil {
		t.Fatalf("roll notation: %v", err)
	}
	rolled, err := rollv1.ParseRoll(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rolled.ID == "" || rolled.SeedSource != storage.SeedSourceServer {
		t.Fatalf("expected recorded server-seeded roll, got %+v", rolled)
	}

	out, err = client.Invoke(ctx, rollv1.MethodGetRoll, rollv1.GetRollRequest{ID: rolled.ID}.Struct())
	if err != nil {
		t.Fatalf("get roll: %v", err)
	}
	got, err := rollv1.ParseRoll(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Total != rolled.Total || got.Sum != rolled.Sum || got.SeedUsed != rolled.SeedUsed {
		t.Fatalf("history mismatch: %+v vs %+v", got, rolled)
	}

	out, err = client.Invoke(ctx, rollv1.MethodListRolls, rollv1.ListRollsRequest{PageSize: 10}.Struct())
	if err != nil {
		t.Fatalf("list rolls: %v", err)
	}
	page, err := rollv1.ParseListRollsResponse(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(page.Rolls) != 1 || page.Rolls[0].ID != rolled.ID {
		t.Fatalf("unexpected page: %+v", page)
	}

	_, err = client.Invoke(ctx, rollv1.MethodGetRoll, rollv1.GetRollRequest{ID: "missing"}.Struct())
	if code, reason, _ := errorReason(t, err); code != codes.NotFound || reason != string(apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %s %s", code, reason)
	}
}

func TestNilServiceIsInternal(t *testing.T) {
	var s *Service
	_, err := s.Roll(context.Background(), &structpb.Struct{})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected internal, got %v", err)
	}
}
