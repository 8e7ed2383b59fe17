package textgensvc

import (
	"context"
	"sync"

	"github.com/matludke/tempocerto/core"
)

// DummyService returns canned text and records prompts. Meant for tests.
type DummyService struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

var _ core.TextGenerator = (*DummyService)(nil)

func NewDummyService(text string) *DummyService {
	return &DummyService{text: text}
}

// Fail makes all subsequent Generate calls return err.
func (svc *DummyService) Fail(err error) {
	svc.mu.Lock()
	svc.err = err
	svc.mu.Unlock()
}

func (svc *DummyService) Generate(_ context.Context, prompt string) (string, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.prompts = append(svc.prompts, prompt)
	if svc.err != nil {
		return "", svc.err
	}
	return svc.text, nil
}

func (svc *DummyService) LastPrompt() string {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if len(svc.prompts) == 0 {
		return ""
	}
	return svc.prompts[len(svc.prompts)-1]
}
