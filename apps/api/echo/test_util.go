package echoapi

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"

	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/study"
	"github.com/matludke/tempocerto/core/user"
	emailsvc "github.com/matludke/tempocerto/services/email"
	logsvc "github.com/matludke/tempocerto/services/logger"
	textgensvc "github.com/matludke/tempocerto/services/textgen"
	dummydb "github.com/matludke/tempocerto/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server   Server
	usrRepo  user.Repository
	codeRepo user.CodeRepository
	actRepo  activity.Repository
	sessRepo study.Repository
	usrSvc   user.Service
	actSvc   activity.Service
	studySvc study.Service
	textGen  *textgensvc.DummyService
}

func setup(t *testing.T) *testApp {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	usrRepo := dummydb.NewUserRepository(db)
	codeRepo := dummydb.NewCodeRepository(db)
	actRepo := dummydb.NewActivityRepository(db)
	sessRepo := dummydb.NewStudyRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	textGen := textgensvc.NewDummyService("You are doing great, keep going!")
	logger := logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))

	usrSvc := user.NewServiceMock(usrRepo, codeRepo, mailSvc, textGen, logger)
	actSvc := activity.NewService(actRepo)
	studySvc := study.NewService(sessRepo, actSvc, textGen)

	server := NewServer(&Options{
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		ActivitySvc:    actSvc,
		StudySvc:       studySvc,
		Logger:         logger,
	})
	return &testApp{
		server:   server,
		usrRepo:  usrRepo,
		codeRepo: codeRepo,
		actRepo:  actRepo,
		sessRepo: sessRepo,
		usrSvc:   usrSvc,
		actSvc:   actSvc,
		studySvc: studySvc,
		textGen:  textGen,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func createUser(t *testing.T, repo user.Repository, name, email, pwd string, isActive bool) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func createActivity(t *testing.T, repo activity.Repository, usr user.User, title, subject string, estimated int, status string) activity.Activity {
	act, err := repo.CreateActivity(activity.Activity{
		UserID:            usr.ID,
		Title:             title,
		Subject:           subject,
		EstimatedDuration: estimated,
		Priority:          activity.PriorityMedium,
		Status:            status,
	})
	if err != nil {
		t.Fatalf("createActivity() failed: %v", err)
	}
	return act
}

func createSession(t *testing.T, repo study.Repository, usr user.User, act activity.Activity, start time.Time, durationMins int) study.Session {
	sess, err := repo.CreateSession(study.Session{
		ActivityID: act.ID,
		UserID:     usr.ID,
		StartTime:  start.UTC(),
		EndTime:    start.UTC().Add(time.Duration(durationMins) * time.Minute),
		Duration:   durationMins,
		Subject:    act.Subject,
	})
	if err != nil {
		t.Fatalf("createSession() failed: %v", err)
	}
	return sess
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(tt.wantData)),
			B:        difflib.SplitLines(rec.Body.String()),
			FromFile: "want",
			ToFile:   "got",
			Context:  1,
		})
		t.Errorf("failed! data mismatch:\n%s", diff)
	}
}
