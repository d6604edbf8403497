package handlers

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"golang.org/x/crypto/bcrypt"

	"todo-service/internal/middleware"
	"todo-service/internal/models"
	"todo-service/internal/repository"
	"todo-service/internal/services"
)

type testServer struct {
	t      *testing.T
	client *fasthttp.Client
	store  *repository.MemoryStore
	tokens *services.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		current = current.Add(time.Second)
		return current
	})

	tokens := services.NewTokenService("test-secret", services.DefaultTokenTTL)
	auth := services.NewAuthService(store.Users(), tokens, nil, bcrypt.MinCost)
	todos := services.NewTodoService(store.Todos())
	handler := NewRouter(NewAuthHandler(auth), NewTodoHandler(todos), middleware.NewAuthMiddleware(auth), "*")

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go server.Serve(ln)
	t.Cleanup(func() { _ = server.Shutdown() })

	return &testServer{
		t: t,
		client: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
		store:  store,
		tokens: tokens,
	}
}

// do выполняет запрос; body типа string уходит как есть, остальное кодируется в JSON
func (s *testServer) do(method, path, token string, body interface{}) (int, []byte) {
	s.t.Helper()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://todo.test" + path)
	req.Header.SetMethod(method)
	if token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	switch b := body.(type) {
	case nil:
	case string:
		req.SetBodyString(b)
		req.Header.SetContentType("application/json")
	default:
		data, err := json.Marshal(b)
		if err != nil {
			s.t.Fatalf("json.Marshal() error = %v", err)
		}
		req.SetBody(data)
		req.Header.SetContentType("application/json")
	}

	if err := s.client.DoTimeout(req, resp, 5*time.Second); err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

func (s *testServer) signup(username, email, password string) models.AuthResponse {
	s.t.Helper()
	status, body := s.do(fasthttp.MethodPost, "/api/auth/signup", "", models.SignupRequest{
		Username: username, Email: email, Password: password,
	})
	if status != fasthttp.StatusCreated {
		s.t.Fatalf("signup status = %d, body = %s", status, body)
	}
	var resp models.AuthResponse
	decode(s.t, body, &resp)
	return resp
}

func decode(t *testing.T, body []byte, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, dest); err != nil {
		t.Fatalf("json.Unmarshal(%s) error = %v", body, err)
	}
}

func messageOf(t *testing.T, body []byte) string {
	t.Helper()
	var resp models.ErrorResponse
	decode(t, body, &resp)
	return resp.Message
}

func TestSignupLoginRoundTrip(t *testing.T) {
	s := newTestServer(t)

	signup := s.signup("alice", "alice@example.com", "pa55word")
	if signup.Message != "User created successfully" || signup.Token == "" {
		t.Fatalf("signup response = %+v", signup)
	}
	if signup.User.Username != "alice" || signup.User.Email != "alice@example.com" || signup.User.ID == "" {
		t.Errorf("signup user = %+v", signup.User)
	}

	status, body := s.do(fasthttp.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Email: "alice@example.com", Password: "pa55word",
	})
	if status != fasthttp.StatusOK {
		t.Fatalf("login status = %d, body = %s", status, body)
	}
	var login models.AuthResponse
	decode(t, body, &login)
	if login.Message != "Login successful" || login.User.ID != signup.User.ID {
		t.Errorf("login response = %+v", login)
	}

	userID, err := s.tokens.Verify(login.Token)
	if err != nil || userID != signup.User.ID {
		t.Errorf("токен входа: userID = %q, err = %v", userID, err)
	}

	var raw map[string]interface{}
	decode(t, body, &raw)
	if user, _ := raw["user"].(map[string]interface{}); user["password"] != nil || user["PasswordHash"] != nil {
		t.Errorf("ответ не должен содержать пароль: %s", body)
	}
}

func TestSignupErrors(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice", "alice@example.com", "p")

	tests := []struct {
		name    string
		body    interface{}
		status  int
		message string
	}{
		{"пустое тело", nil, fasthttp.StatusBadRequest, MsgAllFieldsRequired},
		{"нет пароля", models.SignupRequest{Username: "bob", Email: "bob@example.com"}, fasthttp.StatusBadRequest, MsgAllFieldsRequired},
		{"занятое имя", models.SignupRequest{Username: "alice", Email: "new@example.com", Password: "p"}, fasthttp.StatusBadRequest, MsgUserExists},
		{"занятый email", models.SignupRequest{Username: "bob", Email: "alice@example.com", Password: "p"}, fasthttp.StatusBadRequest, MsgUserExists},
		{"битый JSON", `{"username":`, fasthttp.StatusBadRequest, MsgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(fasthttp.MethodPost, "/api/auth/signup", "", tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d (%s)", status, tt.status, body)
			}
			if msg := messageOf(t, body); msg != tt.message {
				t.Errorf("message = %q, want %q", msg, tt.message)
			}
		})
	}

	if s.store.UserCount() != 1 {
		t.Errorf("UserCount() = %d, want 1", s.store.UserCount())
	}
}

func TestLoginErrors(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice", "alice@example.com", "right")

	tests := []struct {
		name    string
		body    interface{}
		status  int
		message string
	}{
		{"неверный пароль", models.LoginRequest{Email: "alice@example.com", Password: "wrong"}, fasthttp.StatusUnauthorized, MsgInvalidCreds},
		{"неизвестный email", models.LoginRequest{Email: "bob@example.com", Password: "right"}, fasthttp.StatusUnauthorized, MsgInvalidCreds},
		{"нет email", models.LoginRequest{Password: "right"}, fasthttp.StatusBadRequest, MsgAllFieldsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(fasthttp.MethodPost, "/api/auth/login", "", tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			var resp map[string]interface{}
			decode(t, body, &resp)
			if resp["message"] != tt.message {
				t.Errorf("message = %v, want %q", resp["message"], tt.message)
			}
			if _, ok := resp["token"]; ok {
				t.Error("при ошибке входа токен не выдаётся")
			}
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{fasthttp.MethodGet, "/api/todos"},
		{fasthttp.MethodPost, "/api/todos"},
		{fasthttp.MethodGet, "/api/todos/some-id"},
		{fasthttp.MethodPut, "/api/todos/some-id"},
		{fasthttp.MethodDelete, "/api/todos/some-id"},
	}
	for _, route := range routes {
		status, body := s.do(route.method, route.path, "", nil)
		if status != fasthttp.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", route.method, route.path, status)
		}
		if msg := messageOf(t, body); msg != middleware.MsgTokenRequired {
			t.Errorf("%s %s: message = %q", route.method, route.path, msg)
		}
	}

	status, body := s.do(fasthttp.MethodGet, "/api/todos", "not-a-token", nil)
	if status != fasthttp.StatusUnauthorized || messageOf(t, body) != middleware.MsgInvalidToken {
		t.Errorf("мусорный токен: %d %s", status, body)
	}

	ghost, _ := s.tokens.Issue("ghost-user")
	status, body = s.do(fasthttp.MethodGet, "/api/todos", ghost, nil)
	if status != fasthttp.StatusUnauthorized || messageOf(t, body) != middleware.MsgUserNotFound {
		t.Errorf("токен несуществующего пользователя: %d %s", status, body)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "alice@example.com", "p")

	s.tokens.SetClock(func() time.Time { return time.Now().Add(-24*time.Hour - time.Minute) })
	expired, err := s.tokens.Issue(alice.User.ID)
	s.tokens.SetClock(time.Now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	status, body := s.do(fasthttp.MethodGet, "/api/todos", expired, nil)
	if status != fasthttp.StatusUnauthorized || messageOf(t, body) != middleware.MsgInvalidToken {
		t.Errorf("истёкший токен: %d %s", status, body)
	}
}

func TestTodoLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("u1", "u1@example.com", "p").Token

	var created []models.Todo
	for _, title := range []string{"first", "second"} {
		status, body := s.do(fasthttp.MethodPost, "/api/todos", token, models.CreateTodoRequest{Title: title, Description: title + " desc"})
		if status != fasthttp.StatusCreated {
			t.Fatalf("create status = %d, body = %s", status, body)
		}
		var resp models.TodoResponse
		decode(t, body, &resp)
		if resp.Message != "Todo created successfully" || resp.Todo.Completed {
			t.Fatalf("create response = %+v", resp)
		}
		created = append(created, resp.Todo)
	}

	status, body := s.do(fasthttp.MethodGet, "/api/todos", token, nil)
	if status != fasthttp.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var list []models.Todo
	decode(t, body, &list)
	if len(list) != 2 || list[0].ID != created[1].ID || list[1].ID != created[0].ID {
		t.Fatalf("list должен вернуть обе задачи, новые первыми: %+v", list)
	}

	first := created[0].ID
	status, body = s.do(fasthttp.MethodPut, "/api/todos/"+first, token, map[string]bool{"completed": true})
	if status != fasthttp.StatusOK {
		t.Fatalf("update status = %d, body = %s", status, body)
	}
	var updated models.TodoResponse
	decode(t, body, &updated)
	if updated.Message != "Todo updated successfully" || !updated.Todo.Completed || updated.Todo.Title != "first" {
		t.Errorf("update response = %+v", updated)
	}

	status, body = s.do(fasthttp.MethodGet, "/api/todos/"+first, token, nil)
	var got models.Todo
	decode(t, body, &got)
	if status != fasthttp.StatusOK || !got.Completed {
		t.Errorf("get после update: %d %+v", status, got)
	}

	status, body = s.do(fasthttp.MethodDelete, "/api/todos/"+first, token, nil)
	if status != fasthttp.StatusOK || messageOf(t, body) != "Todo deleted successfully" {
		t.Errorf("delete: %d %s", status, body)
	}

	status, body = s.do(fasthttp.MethodGet, "/api/todos", token, nil)
	decode(t, body, &list)
	if status != fasthttp.StatusOK || len(list) != 1 || list[0].ID != created[1].ID {
		t.Errorf("после удаления должна остаться одна задача: %+v", list)
	}

	status, _ = s.do(fasthttp.MethodDelete, "/api/todos/"+first, token, nil)
	if status != fasthttp.StatusNotFound {
		t.Errorf("повторное удаление: status = %d, want 404", status)
	}
}

func TestUpdateCompletedFalse(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("u1", "u1@example.com", "p").Token

	_, body := s.do(fasthttp.MethodPost, "/api/todos", token, models.CreateTodoRequest{Title: "t", Description: "d"})
	var created models.TodoResponse
	decode(t, body, &created)
	path := "/api/todos/" + created.Todo.ID

	s.do(fasthttp.MethodPut, path, token, `{"completed": true}`)
	status, body := s.do(fasthttp.MethodPut, path, token, `{"completed": false}`)
	var updated models.TodoResponse
	decode(t, body, &updated)
	if status != fasthttp.StatusOK || updated.Todo.Completed {
		t.Errorf("completed:false должен сбросить флаг: %d %+v", status, updated.Todo)
	}

	// поля без completed флаг не трогают, пустой title игнорируется
	s.do(fasthttp.MethodPut, path, token, `{"completed": true}`)
	_, body = s.do(fasthttp.MethodPut, path, token, `{"title": "", "description": "new"}`)
	decode(t, body, &updated)
	if !updated.Todo.Completed || updated.Todo.Title != "t" || updated.Todo.Description != "new" {
		t.Errorf("частичное обновление = %+v", updated.Todo)
	}

	status, _ = s.do(fasthttp.MethodPut, path, token, `{"completed": "yes"}`)
	if status != fasthttp.StatusBadRequest {
		t.Errorf("completed неверного типа: status = %d, want 400", status)
	}
}

func TestCreateTodoValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("u1", "u1@example.com", "p").Token

	for _, body := range []interface{}{
		nil,
		models.CreateTodoRequest{Title: "t"},
		models.CreateTodoRequest{Description: "d"},
	} {
		status, resp := s.do(fasthttp.MethodPost, "/api/todos", token, body)
		if status != fasthttp.StatusBadRequest || messageOf(t, resp) != MsgTodoFieldsMissing {
			t.Errorf("create(%v): %d %s", body, status, resp)
		}
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "alice@example.com", "p").Token
	bob := s.signup("bob", "bob@example.com", "p").Token

	_, body := s.do(fasthttp.MethodPost, "/api/todos", alice, models.CreateTodoRequest{Title: "secret", Description: "d"})
	var created models.TodoResponse
	decode(t, body, &created)

	for _, id := range []string{created.Todo.ID, "no-such-id"} {
		path := "/api/todos/" + id
		for _, method := range []string{fasthttp.MethodGet, fasthttp.MethodPut, fasthttp.MethodDelete} {
			var payload interface{}
			if method == fasthttp.MethodPut {
				payload = `{"completed": true}`
			}
			status, resp := s.do(method, path, bob, payload)
			if status != fasthttp.StatusNotFound || messageOf(t, resp) != MsgTodoNotFound {
				t.Errorf("%s %s от bob: %d %s", method, path, status, resp)
			}
		}
	}

	_, body = s.do(fasthttp.MethodGet, "/api/todos", bob, nil)
	var list []models.Todo
	decode(t, body, &list)
	if len(list) != 0 {
		t.Errorf("bob видит чужие задачи: %+v", list)
	}

	status, body := s.do(fasthttp.MethodGet, "/api/todos/"+created.Todo.ID, alice, nil)
	var got models.Todo
	decode(t, body, &got)
	if status != fasthttp.StatusOK || got.Completed {
		t.Errorf("задача alice изменилась: %d %+v", status, got)
	}
}

func TestAuxiliaryRoutes(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(fasthttp.MethodGet, "/health", "", nil)
	if status != fasthttp.StatusOK {
		t.Errorf("health status = %d", status)
	}
	var health map[string]string
	decode(t, body, &health)
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}

	status, body = s.do(fasthttp.MethodGet, "/api/nope", "", nil)
	if status != fasthttp.StatusNotFound || messageOf(t, body) != MsgRouteNotFound {
		t.Errorf("unknown route: %d %s", status, body)
	}

	status, _ = s.do(fasthttp.MethodOptions, "/api/todos", "", nil)
	if status != fasthttp.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", status)
	}
}
