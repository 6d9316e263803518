package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"careerpath-backend/models/profile"
	"careerpath-backend/models/recommend"
	"careerpath-backend/services"
)

// fakeStore records pipeline writes in memory.
type fakeStore struct {
	mu     sync.Mutex
	saved  map[uint]*recommend.Artifact
	failed bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[uint]*recommend.Artifact)}
}

func (s *fakeStore) Save(userID uint, artifact *recommend.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return errors.New("connection refused")
	}
	s.saved[userID] = artifact
	return nil
}

func (s *fakeStore) get(userID uint) *recommend.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[userID]
}

// gatewayResponse wraps content in the chat-completions response shape.
func gatewayResponse(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func newTestPipeline(t *testing.T, handler http.HandlerFunc) (*services.Pipeline, *fakeStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("AI_API_KEY", "test-key")
	t.Setenv("AI_GATEWAY_URL", server.URL)

	store := newFakeStore()
	return services.NewPipeline(services.NewGatewayClient(), store, zap.NewNop().Sugar()), store
}

func TestGenerate_SuccessPersistsVerbatim(t *testing.T) {
	pipe, store := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer credential, got %q", r.Header.Get("Authorization"))
		}
		var req struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Temperature != 0.7 {
			t.Errorf("temperature = %v, want 0.7", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Write(gatewayResponse(t, sampleJSON))
	})

	if err := pipe.Generate(context.Background(), 7, &profile.Profile{}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if got := store.get(7); !reflect.DeepEqual(got, sampleArtifact()) {
		t.Errorf("persisted artifact differs from extracted one:\ngot  %+v\nwant %+v", got, sampleArtifact())
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	pipe, store := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	err := pipe.Generate(context.Background(), 1, &profile.Profile{})
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("Generate = %v, want ErrRateLimited", err)
	}
	if store.get(1) != nil {
		t.Error("nothing must be persisted on a 429")
	}
}

func TestGenerate_CreditsRequired(t *testing.T) {
	pipe, _ := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pay up", http.StatusPaymentRequired)
	})

	err := pipe.Generate(context.Background(), 1, &profile.Profile{})
	if !errors.Is(err, services.ErrCreditsRequired) {
		t.Fatalf("Generate = %v, want ErrCreditsRequired", err)
	}
}

func TestGenerate_GenericUpstreamFailureCarriesStatus(t *testing.T) {
	pipe, _ := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := pipe.Generate(context.Background(), 1, &profile.Profile{})
	var upstream *services.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Generate = %v, want *UpstreamError", err)
	}
	if upstream.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", upstream.Status)
	}
}

func TestGenerate_MissingContent(t *testing.T) {
	pipe, store := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	err := pipe.Generate(context.Background(), 1, &profile.Profile{})
	if !errors.Is(err, services.ErrNoContent) {
		t.Fatalf("Generate = %v, want ErrNoContent", err)
	}
	if store.get(1) != nil {
		t.Error("nothing must be persisted when content is missing")
	}
}

func TestGenerate_UnparseableOutputDoesNotPersist(t *testing.T) {
	pipe, store := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(gatewayResponse(t, "Sorry, I cannot help with that."))
	})

	err := pipe.Generate(context.Background(), 1, &profile.Profile{})
	if !errors.Is(err, services.ErrUnparseable) {
		t.Fatalf("Generate = %v, want ErrUnparseable", err)
	}
	if store.get(1) != nil {
		t.Error("nothing must be persisted on a parse failure")
	}
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	var calls int
	pipe, _ := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	t.Setenv("AI_API_KEY", "")

	err := pipe.Generate(context.Background(), 1, &profile.Profile{})
	if !errors.Is(err, services.ErrAPIKeyMissing) {
		t.Fatalf("Generate = %v, want ErrAPIKeyMissing", err)
	}
	if calls != 0 {
		t.Errorf("no upstream call may be attempted without a credential, got %d", calls)
	}
}

func TestGenerate_StoreFailureIsDistinct(t *testing.T) {
	pipe, store := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(gatewayResponse(t, sampleJSON))
	})
	store.failed = true

	err := pipe.Generate(context.Background(), 1, &profile.Profile{})
	var storeErr *services.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Generate = %v, want *StoreError", err)
	}
}

func TestGenerate_GuardBlocksConcurrentRuns(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 2)
	pipe, _ := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		w.Write(gatewayResponse(t, sampleJSON))
	})

	done := make(chan error, 1)
	go func() {
		done <- pipe.Generate(context.Background(), 42, &profile.Profile{})
	}()

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("first generation never reached the gateway")
	}

	if err := pipe.Generate(context.Background(), 42, &profile.Profile{}); !errors.Is(err, services.ErrGenerationInFlight) {
		t.Fatalf("second concurrent Generate = %v, want ErrGenerationInFlight", err)
	}

	// A different user is not affected by the guard.
	go func() {
		if err := pipe.Generate(context.Background(), 99, &profile.Profile{}); errors.Is(err, services.ErrGenerationInFlight) {
			t.Error("guard must be per user")
		}
	}()
	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("second user's generation never reached the gateway")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}

	// Guard released after success: the same user can run again.
	if err := pipe.Generate(context.Background(), 42, &profile.Profile{}); err != nil {
		t.Fatalf("Generate after completion = %v, want nil", err)
	}
}

func TestGenerate_GuardReleasedAfterFailure(t *testing.T) {
	pipe, _ := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	if err := pipe.Generate(context.Background(), 5, &profile.Profile{}); !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("first Generate = %v, want ErrRateLimited", err)
	}
	// The failed run must not leave the guard held.
	if err := pipe.Generate(context.Background(), 5, &profile.Profile{}); !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("second Generate = %v, want ErrRateLimited (guard stuck?)", err)
	}
}
