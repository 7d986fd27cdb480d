package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasklight/backend/api/handler"
	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/internal/middleware"
	"github.com/tasklight/backend/internal/router"
	"github.com/tasklight/backend/pkg/token"
	accountUC "github.com/tasklight/backend/usecase/account"
	authUC "github.com/tasklight/backend/usecase/auth"
	taskUC "github.com/tasklight/backend/usecase/task"
)

type memUserRepo struct {
	nextID int64
	users  map[string]*domain.User
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetByUserName(_ context.Context, userName string) (*domain.User, error) {
	u, ok := r.users[userName]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.UserName]; ok {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.users[user.UserName] = &stored
	return user, nil
}

type memTaskRepo struct {
	nextID int64
	tasks  map[int64]domain.Task
}

func (r *memTaskRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Task, error) {
	out := []domain.Task{}
	for _, t := range r.tasks {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id, ownerID int64) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = *task
	return task, nil
}

func (r *memTaskRepo) SetComplete(_ context.Context, id, ownerID int64, isComplete bool) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	t.IsComplete = isComplete
	r.tasks[id] = t
	return &t, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id, ownerID int64) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return &t, nil
}

type testAPI struct {
	handle fasthttp.RequestHandler
	tokens *token.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	tokens := token.New(token.Config{
		Secret:   "test-secret",
		Issuer:   "tasklight",
		Audience: "tasklight-web",
		TTL:      30 * time.Minute,
	})

	users := &memUserRepo{users: map[string]*domain.User{}}
	tasks := &memTaskRepo{tasks: map[int64]domain.Task{}}

	auth := authUC.New(users, tokens, nil, authUC.ThrottleConfig{}, nil, nil)
	account := accountUC.New(users, nil)
	task := taskUC.New(tasks, nil, nil)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(auth, nil, nil),
		Account: apiHandler.NewAccountHandler(account, nil, nil),
		Task:    apiHandler.NewTaskHandler(task, nil, nil),
		Health:  apiHandler.NewHealthHandler(nil, nil, nil),
	}

	r := router.New(handlers, middleware.Auth(tokens, nil))
	return &testAPI{handle: r.Handler, tokens: tokens}
}

func (api *testAPI) do(t *testing.T, method, uri, bearer string, body interface{}) *fasthttp.RequestCtx {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if bearer != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		ctx.Request.SetBody(payload)
	}
	api.handle(&ctx)
	return &ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(ctx.Response.Body(), out); err != nil {
		t.Fatalf("decode response %q: %v", ctx.Response.Body(), err)
	}
}

func registerAndLogin(t *testing.T, api *testAPI, userName, mail, password string) string {
	t.Helper()
	resp := api.do(t, "POST", "/register", "", map[string]string{
		"userName": userName, "mail": mail, "password": password,
	})
	if resp.Response.StatusCode() != 200 {
		t.Fatalf("register %s: status %d", userName, resp.Response.StatusCode())
	}

	resp = api.do(t, "POST", "/login", "", map[string]string{
		"userName": userName, "password": password,
	})
	if resp.Response.StatusCode() != 200 {
		t.Fatalf("login %s: status %d", userName, resp.Response.StatusCode())
	}
	var body struct {
		Token string `json:"token"`
	}
	decode(t, resp, &body)
	if body.Token == "" {
		t.Fatalf("login %s: empty token", userName)
	}
	return body.Token
}

func TestRootIsPublic(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, "GET", "/", "", nil)
	if resp.Response.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200", resp.Response.StatusCode())
	}
	if got := string(resp.Response.Body()); got != "server is running" {
		t.Fatalf("body = %q, want %q", got, "server is running")
	}
}

func TestRegisterConflict(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "POST", "/register", "", map[string]string{
		"userName": "alice", "mail": "a@x.com", "password": "pw1",
	})
	if resp.Response.StatusCode() != 200 {
		t.Fatalf("first register: status %d", resp.Response.StatusCode())
	}
	var msg string
	decode(t, resp, &msg)
	if msg != "User registered successfully." {
		t.Fatalf("body = %q", msg)
	}

	resp = api.do(t, "POST", "/register", "", map[string]string{
		"userName": "alice", "mail": "b@x.com", "password": "pw2",
	})
	if resp.Response.StatusCode() != 400 {
		t.Fatalf("duplicate register: status %d, want 400", resp.Response.StatusCode())
	}
	decode(t, resp, &msg)
	if msg != "User already exists." {
		t.Fatalf("body = %q", msg)
	}
}

func TestLoginFailure(t *testing.T) {
	api := newTestAPI(t)
	registerAndLogin(t, api, "alice", "a@x.com", "pw1")

	resp := api.do(t, "POST", "/login", "", map[string]string{
		"userName": "alice", "password": "wrong",
	})
	if resp.Response.StatusCode() != 401 {
		t.Fatalf("status = %d, want 401", resp.Response.StatusCode())
	}
	var body struct {
		Message string `json:"message"`
	}
	decode(t, resp, &body)
	if body.Message != "Invalid username or password." {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestTaskLifecycle(t *testing.T) {
	api := newTestAPI(t)
	tok := registerAndLogin(t, api, "alice", "a@x.com", "pw1")

	resp := api.do(t, "POST", "/tasks", tok, map[string]interface{}{
		"name": "buy milk", "isComplete": false,
	})
	if resp.Response.StatusCode() != 201 {
		t.Fatalf("create: status %d, want 201", resp.Response.StatusCode())
	}
	if loc := string(resp.Response.Header.Peek("Location")); loc != "/tasks/1" {
		t.Fatalf("Location = %q, want /tasks/1", loc)
	}
	var created domain.Task
	decode(t, resp, &created)
	if created.ID != 1 || created.UserID != 1 || created.Name != "buy milk" || created.IsComplete {
		t.Fatalf("created = %+v", created)
	}

	resp = api.do(t, "GET", "/tasks", tok, nil)
	var list []domain.Task
	decode(t, resp, &list)
	if len(list) != 1 || list[0].Name != "buy milk" {
		t.Fatalf("list = %+v", list)
	}

	// A submitted name must be ignored on update.
	resp = api.do(t, "PUT", "/tasks/1", tok, map[string]interface{}{
		"name": "renamed", "isComplete": true,
	})
	if resp.Response.StatusCode() != 200 {
		t.Fatalf("update: status %d", resp.Response.StatusCode())
	}
	var updated domain.Task
	decode(t, resp, &updated)
	if !updated.IsComplete || updated.Name != "buy milk" {
		t.Fatalf("updated = %+v, want completed with original name", updated)
	}

	resp = api.do(t, "DELETE", "/tasks/1", tok, nil)
	if resp.Response.StatusCode() != 200 {
		t.Fatalf("delete: status %d", resp.Response.StatusCode())
	}
	var deleted domain.Task
	decode(t, resp, &deleted)
	if deleted.ID != 1 || deleted.Name != "buy milk" {
		t.Fatalf("deleted = %+v", deleted)
	}

	resp = api.do(t, "GET", "/tasks/1", tok, nil)
	if resp.Response.StatusCode() != 404 {
		t.Fatalf("get after delete: status %d, want 404", resp.Response.StatusCode())
	}
}

func TestCrossUserIsolation(t *testing.T) {
	api := newTestAPI(t)
	aliceTok := registerAndLogin(t, api, "alice", "a@x.com", "pw1")
	bobTok := registerAndLogin(t, api, "bob", "b@x.com", "pw2")

	resp := api.do(t, "POST", "/tasks", aliceTok, map[string]interface{}{
		"name": "secret", "isComplete": false,
	})
	if resp.Response.StatusCode() != 201 {
		t.Fatalf("create: status %d", resp.Response.StatusCode())
	}

	t.Run("bob's list stays empty", func(t *testing.T) {
		resp := api.do(t, "GET", "/tasks", bobTok, nil)
		var list []domain.Task
		decode(t, resp, &list)
		if len(list) != 0 {
			t.Fatalf("bob's list = %+v, want empty", list)
		}
	})

	cases := []struct {
		name   string
		method string
		body   interface{}
	}{
		{"get", "GET", nil},
		{"update", "PUT", map[string]interface{}{"name": "x", "isComplete": true}},
		{"delete", "DELETE", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name+" responds not found", func(t *testing.T) {
			resp := api.do(t, tc.method, "/tasks/1", bobTok, tc.body)
			if resp.Response.StatusCode() != 404 {
				t.Fatalf("status = %d, want 404", resp.Response.StatusCode())
			}
		})
	}
}

func TestProtectedEndpointsRequireAssertion(t *testing.T) {
	api := newTestAPI(t)

	paths := []struct {
		method string
		uri    string
	}{
		{"GET", "/tasks"},
		{"GET", "/tasks/1"},
		{"POST", "/tasks"},
		{"PUT", "/tasks/1"},
		{"DELETE", "/tasks/1"},
		{"GET", "/me"},
	}
	for _, p := range paths {
		t.Run(fmt.Sprintf("%s %s", p.method, p.uri), func(t *testing.T) {
			resp := api.do(t, p.method, p.uri, "", nil)
			if resp.Response.StatusCode() != 401 {
				t.Fatalf("status = %d, want 401", resp.Response.StatusCode())
			}
		})
	}
}

func TestExpiredAssertionRejected(t *testing.T) {
	api := newTestAPI(t)
	registerAndLogin(t, api, "alice", "a@x.com", "pw1")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"uid": "1",
		"iss": "tasklight",
		"aud": "tasklight-web",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	assertion, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	resp := api.do(t, "GET", "/tasks", assertion, nil)
	if resp.Response.StatusCode() != 401 {
		t.Fatalf("status = %d, want 401", resp.Response.StatusCode())
	}
}

func TestGetAccount(t *testing.T) {
	api := newTestAPI(t)
	tok := registerAndLogin(t, api, "alice", "a@x.com", "pw1")

	resp := api.do(t, "GET", "/me", tok, nil)
	if resp.Response.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200", resp.Response.StatusCode())
	}
	var me struct {
		ID       int64  `json:"id"`
		UserName string `json:"userName"`
		Mail     string `json:"mail"`
		Password string `json:"password"`
	}
	decode(t, resp, &me)
	if me.ID != 1 || me.UserName != "alice" || me.Mail != "a@x.com" {
		t.Fatalf("me = %+v", me)
	}
	if me.Password != "" {
		t.Fatal("password hash leaked in response")
	}
}
