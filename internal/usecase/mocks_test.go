package usecase

import (
	"context"
	"sync"

	"github.com/halalcheck/client/internal/domain"
)

// MockAnalysisClient is a mock implementation of domain.AnalysisClient.
// When gate is non-nil every call blocks until a value is sent on it.
type MockAnalysisClient struct {
	mu sync.Mutex

	analysisResult *domain.AnalysisResult
	analysisError  error
	chatResult     *domain.ChatResult
	chatError      error
	gate           chan struct{}

	analyzeCalls []domain.AnalysisRequest
	chatCalls    []string
}

func NewMockAnalysisClient() *MockAnalysisClient {
	return &MockAnalysisClient{}
}

func (m *MockAnalysisClient) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.mu.Lock()
	m.analyzeCalls = append(m.analyzeCalls, req)
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analysisResult, m.analysisError
}

func (m *MockAnalysisClient) Chat(ctx context.Context, question string) (*domain.ChatResult, error) {
	m.mu.Lock()
	m.chatCalls = append(m.chatCalls, question)
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatResult, m.chatError
}

func (m *MockAnalysisClient) setAnalysis(result *domain.AnalysisResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysisResult, m.analysisError = result, err
}

func (m *MockAnalysisClient) setChat(result *domain.ChatResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatResult, m.chatError = result, err
}

func (m *MockAnalysisClient) analyzeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.analyzeCalls)
}

func (m *MockAnalysisClient) chatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chatCalls)
}

// recordingObserver keeps every event it sees, in order.
type recordingObserver struct {
	mu     sync.Mutex
	events []domain.WorkflowEvent
}

func (o *recordingObserver) OnEvent(ctx context.Context, event domain.WorkflowEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) types() []domain.EventType {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.EventType, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.Type)
	}
	return out
}

// exclusive checks that at most one of loading, result and error is active.
func exclusive(loading bool, hasResult bool, errMsg string) bool {
	active := 0
	if loading {
		active++
	}
	if hasResult {
		active++
	}
	if errMsg != "" {
		active++
	}
	return active <= 1
}
