package user_test

import (
	"io/ioutil"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core/user"
	emailsvc "github.com/matludke/tempocerto/services/email"
	logsvc "github.com/matludke/tempocerto/services/logger"
	textgensvc "github.com/matludke/tempocerto/services/textgen"
)

type codeRepoFake struct {
	codes map[string]user.LoginCode
}

var _ user.CodeRepository = (*codeRepoFake)(nil)

func newCodeRepoFake() *codeRepoFake {
	return &codeRepoFake{codes: make(map[string]user.LoginCode)}
}

func (repo *codeRepoFake) SaveLoginCode(lc user.LoginCode) error {
	repo.codes[lc.Email] = lc
	return nil
}

func (repo *codeRepoFake) GetLoginCode(email string) (user.LoginCode, error) {
	if lc, ok := repo.codes[email]; ok {
		return lc, nil
	}
	return user.LoginCode{}, user.ErrCodeNotFound
}

func (repo *codeRepoFake) DeleteLoginCode(email string) error {
	delete(repo.codes, email)
	return nil
}

func setupCodeSvc(t *testing.T) (user.Service, *codeRepoFake, *textgensvc.DummyService) {
	t.Helper()
	emailsvc.ClearSentMessages()

	codeRepo := newCodeRepoFake()
	textGen := textgensvc.NewDummyService("Here is your code. It expires in 10 minutes.")
	logger := logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
	svc := user.NewServiceMock(nil, codeRepo, emailsvc.NewConsoleServiceMock(), textGen, logger)
	return svc, codeRepo, textGen
}

func TestRequestLoginCode(t *testing.T) {
	svc, codeRepo, textGen := setupCodeSvc(t)

	email := "hero@test.cd"
	if err := svc.RequestLoginCode(" Hero@Test.cd "); err != nil {
		t.Fatalf("RequestLoginCode() failed: %v", err)
	}

	lc, ok := codeRepo.codes[email]
	if !ok {
		t.Fatal("no login code stored for email")
	}
	if len(lc.Code) != 6 {
		t.Errorf("code length = %d; want 6", len(lc.Code))
	}
	if lc.Code < "100000" || lc.Code > "999999" {
		t.Errorf("code %q out of range", lc.Code)
	}
	if wantExp := time.Now().UTC().Add(10 * time.Minute); lc.ExpiresAt.Sub(wantExp) > time.Minute {
		t.Errorf("expiry = %v; want ~%v", lc.ExpiresAt, wantExp)
	}

	// the generated email references the code and its validity
	if prompt := textGen.LastPrompt(); !strings.Contains(prompt, lc.Code) {
		t.Errorf("prompt does not reference the code: %q", prompt)
	}
	if n := len(emailsvc.SentMessages); n != 1 {
		t.Fatalf("sent messages = %d; want 1", n)
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0].Address != email {
		t.Errorf("recipient = %q; want %q", msg.To[0].Address, email)
	}
	if msg.TextContent == "" {
		t.Error("message has no text content")
	}
}

func TestRequestLoginCode_replacesPriorCode(t *testing.T) {
	svc, codeRepo, _ := setupCodeSvc(t)

	email := "hero@test.cd"
	stale := user.LoginCode{Email: email, Code: "111111", ExpiresAt: time.Now().UTC().Add(time.Minute)}
	if err := codeRepo.SaveLoginCode(stale); err != nil {
		t.Fatalf("SaveLoginCode() failed: %v", err)
	}

	if err := svc.RequestLoginCode(email); err != nil {
		t.Fatalf("RequestLoginCode() failed: %v", err)
	}

	if n := len(codeRepo.codes); n != 1 {
		t.Fatalf("stored codes = %d; want 1", n)
	}
	if lc := codeRepo.codes[email]; !lc.ExpiresAt.After(stale.ExpiresAt) {
		t.Errorf("new expiry %v not after stale expiry %v", lc.ExpiresAt, stale.ExpiresAt)
	}
}

func TestRequestLoginCode_templateFallback(t *testing.T) {
	svc, codeRepo, textGen := setupCodeSvc(t)
	textGen.Fail(errors.New("generation unavailable"))

	email := "hero@test.cd"
	if err := svc.RequestLoginCode(email); err != nil {
		t.Fatalf("RequestLoginCode() failed: %v", err)
	}

	if n := len(emailsvc.SentMessages); n != 1 {
		t.Fatalf("sent messages = %d; want 1", n)
	}
	msg := emailsvc.SentMessages[0]
	if msg.TemplateName != "login-code" {
		t.Errorf("template = %q; want login-code", msg.TemplateName)
	}
	if lc := codeRepo.codes[email]; !strings.Contains(msg.TextContent, lc.Code) {
		t.Errorf("rendered body does not contain the code: %q", msg.TextContent)
	}
}

func TestVerifyLoginCode(t *testing.T) {
	email := "hero@test.cd"
	now := time.Now().UTC()

	tests := []struct {
		name     string
		stored   *user.LoginCode
		code     string
		now      time.Time
		want     bool
		wantKept bool
	}{
		{name: "no entry", code: "123456", now: now},
		{
			name:   "expired entry is deleted",
			stored: &user.LoginCode{Email: email, Code: "123456", ExpiresAt: now.Add(-time.Second)},
			code:   "123456",
			now:    now,
		},
		{
			name:   "exact expiry instant is still valid",
			stored: &user.LoginCode{Email: email, Code: "123456", ExpiresAt: now},
			code:   "123456",
			now:    now,
			want:   true,
		},
		{
			name:     "mismatch keeps the entry",
			stored:   &user.LoginCode{Email: email, Code: "123456", ExpiresAt: now.Add(10 * time.Minute)},
			code:     "654321",
			now:      now,
			wantKept: true,
		},
		{
			name:   "match consumes the entry",
			stored: &user.LoginCode{Email: email, Code: "123456", ExpiresAt: now.Add(10 * time.Minute)},
			code:   "123456",
			now:    now,
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, codeRepo, _ := setupCodeSvc(t)
			if tt.stored != nil {
				if err := codeRepo.SaveLoginCode(*tt.stored); err != nil {
					t.Fatalf("SaveLoginCode() failed: %v", err)
				}
			}

			*user.NowFunc = func() time.Time { return tt.now }
			defer func() { *user.NowFunc = time.Now }()

			valid, err := svc.VerifyLoginCode(email, tt.code)
			if err != nil {
				t.Fatalf("VerifyLoginCode() failed: %v", err)
			}
			if valid != tt.want {
				t.Errorf("VerifyLoginCode() = %v; want %v", valid, tt.want)
			}
			if _, kept := codeRepo.codes[email]; kept != tt.wantKept {
				t.Errorf("entry kept = %v; want %v", kept, tt.wantKept)
			}
		})
	}
}

func TestVerifyLoginCode_singleUse(t *testing.T) {
	svc, codeRepo, _ := setupCodeSvc(t)

	email := "hero@test.cd"
	if err := svc.RequestLoginCode(email); err != nil {
		t.Fatalf("RequestLoginCode() failed: %v", err)
	}
	code := codeRepo.codes[email].Code

	valid, err := svc.VerifyLoginCode(email, code)
	if err != nil {
		t.Fatalf("VerifyLoginCode() failed: %v", err)
	}
	if !valid {
		t.Fatal("first VerifyLoginCode() = false; want true")
	}

	valid, err = svc.VerifyLoginCode(email, code)
	if err != nil {
		t.Fatalf("VerifyLoginCode() failed: %v", err)
	}
	if valid {
		t.Error("second VerifyLoginCode() = true; want false (single-use)")
	}
}

func TestGenerateLoginCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := user.GenerateLoginCode()
		if err != nil {
			t.Fatalf("generateLoginCode() failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q length = %d; want 6", code, len(code))
		}
		if code < "100000" || code > "999999" {
			t.Fatalf("code %q out of range", code)
		}
	}
}
