package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencms/config"
	"zencms/core/auth"
	"zencms/core/changefeed"
	"zencms/model"
	"zencms/service"
	"zencms/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
	// url 为空时模拟拿到了不可登记的地址
	url string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, url: "https://cdn.example.com/"}
}

func (f *fakeStore) Upload(_ context.Context, category, filename string, r io.Reader, _ int64, contentType string) (*storage.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	key := category + "/" + filename
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	url := ""
	if f.url != "" {
		url = f.url + key
	}
	return &storage.UploadResult{Key: key, URL: url, Size: int64(len(data)), ContentType: contentType, Category: category}, nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeStore) Open(_ context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), &storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

type testEnv struct {
	srv   *httptest.Server
	store *fakeStore
	hub   *changefeed.Hub
	cfg   *config.Config
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := &config.Config{HTTPPort: "0", AdminUsername: "admin", TokenTTL: time.Hour}
	if mutate != nil {
		mutate(cfg)
	}

	hub := changefeed.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	svc := service.New(service.MemoryRepositories(), service.Options{Notifier: hub})
	store := newFakeStore()
	s := New(cfg, Deps{Services: svc, Store: store, Hub: hub})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store, hub: hub, cfg: cfg}
}

func (e *testEnv) call(t *testing.T, function string, req model.ActionRequest, token string) (int, *model.Response) {
	t.Helper()
	body, err := model.EncodeEnvelope(req)
	require.NoError(t, err)
	return e.post(t, function, body, token)
}

func (e *testEnv) post(t *testing.T, function string, body []byte, token string) (int, *model.Response) {
	t.Helper()
	httpReq, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/functions/"+function, bytes.NewReader(body))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out model.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, &out
}

func TestFunctionCategoryRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)

	status, resp := env.call(t, model.FuncCategory, model.AddCategoryRequest{Name: "冥想"}, "")
	require.Equal(t, http.StatusOK, status, resp.Error)
	require.True(t, resp.Success)

	var created model.Category
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "冥想", created.Name)

	status, resp = env.call(t, model.FuncCategory, model.ListCategoriesRequest{}, "")
	require.Equal(t, http.StatusOK, status)
	var list []model.Category
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestFunctionRejectsUnknownActionAndFunction(t *testing.T) {
	env := newTestEnv(t, nil)

	status, resp := env.post(t, model.FuncMusic, []byte(`{"action":"dropTable"}`), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION", resp.Code)
	assert.Contains(t, resp.Error, "unknown action")

	status, resp = env.post(t, model.FuncMusic, []byte(`{"categoryId":"x"}`), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Error, "missing action")

	status, resp = env.post(t, "nope", []byte(`{"action":"get"}`), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestFunctionMusicListEnvelope(t *testing.T) {
	env := newTestEnv(t, nil)

	_, resp := env.call(t, model.FuncCategory, model.AddCategoryRequest{Name: "A"}, "")
	var cat model.Category
	require.NoError(t, json.Unmarshal(resp.Data, &cat))

	for _, name := range []string{"one", "two", "three"} {
		status, resp := env.call(t, model.FuncMusic, model.AddMusicRequest{
			Name: name, AudioURL: "https://a/" + name, Title: name, CategoryID: cat.ID,
		}, "")
		require.Equal(t, http.StatusOK, status, resp.Error)
	}

	status, resp := env.call(t, model.FuncMusic, model.ListMusicRequest{Limit: 2}, "")
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Total)
	assert.EqualValues(t, 3, *resp.Total)
	assert.False(t, resp.NeedsInit)

	var list []model.Music
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Name)
}

func TestFunctionConflictStatus(t *testing.T) {
	env := newTestEnv(t, nil)

	_, resp := env.call(t, model.FuncCategory, model.AddCategoryRequest{Name: "A"}, "")
	var cat model.Category
	require.NoError(t, json.Unmarshal(resp.Data, &cat))
	status, resp := env.call(t, model.FuncMusic, model.AddMusicRequest{Name: "m", AudioURL: "u", Title: "t", CategoryID: cat.ID}, "")
	require.Equal(t, http.StatusOK, status, resp.Error)

	status, resp = env.call(t, model.FuncCategory, model.DeleteCategoryRequest{ID: cat.ID}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", resp.Code)
}

func TestFunctionServerWithoutServices(t *testing.T) {
	s := New(&config.Config{}, Deps{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/functions/statistics", strings.NewReader(`{"action":"get"}`))
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "INITIALIZATION")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)
	req, _ := http.NewRequest(http.MethodOptions, env.srv.URL+"/api/functions/musicManager", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, env *testEnv, fields map[string]string, filename string) (int, *model.Response) {
	t.Helper()
	body, contentType := multipartBody(t, fields, filename, []byte("payload"))
	resp, err := http.Post(env.srv.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out model.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, &out
}

func TestUploadAndRegisterImage(t *testing.T) {
	env := newTestEnv(t, nil)

	status, resp := upload(t, env, map[string]string{"category": "images", "register": "true"}, "forest.jpg")
	require.Equal(t, http.StatusOK, status, resp.Error)

	var out struct {
		Upload storage.UploadResult `json:"upload"`
		Record model.Image          `json:"record"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, "images/forest.jpg", out.Upload.Key)
	assert.Equal(t, "forest", out.Record.Name)
	assert.Equal(t, "https://cdn.example.com/images/forest.jpg", out.Record.URL)

	_, resp = env.call(t, model.FuncImage, model.ListImagesRequest{}, "")
	require.NotNil(t, resp.Total)
	assert.EqualValues(t, 1, *resp.Total)

	// 静态路由可以读回对象
	get, err := http.Get(env.srv.URL + "/static/images/forest.jpg")
	require.NoError(t, err)
	defer get.Body.Close()
	content, _ := io.ReadAll(get.Body)
	assert.Equal(t, http.StatusOK, get.StatusCode)
	assert.Equal(t, "payload", string(content))
}

func TestUploadInfersAudioCategory(t *testing.T) {
	env := newTestEnv(t, nil)

	status, resp := upload(t, env, map[string]string{"register": "true", "duration": "61.5"}, "rain.mp3")
	require.Equal(t, http.StatusOK, status, resp.Error)

	var out struct {
		Upload storage.UploadResult `json:"upload"`
		Record model.Audio          `json:"record"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, storage.CategoryAudios, out.Upload.Category)
	assert.Equal(t, 61.5, out.Record.Duration)
	assert.EqualValues(t, len("payload"), out.Record.Size)
}

type fakeProbe struct {
	content string
}

func (p *fakeProbe) Duration(_ context.Context, inputFile string) (float64, error) {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return 0, err
	}
	p.content = string(data)
	return 42, nil
}

func TestUploadProbesAudioDuration(t *testing.T) {
	probe := &fakeProbe{}
	svc := service.New(service.MemoryRepositories(), service.Options{})
	s := New(&config.Config{}, Deps{Services: svc, Store: newFakeStore(), Probe: probe})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	body, contentType := multipartBody(t, map[string]string{"register": "true"}, "waves.mp3", []byte("payload"))
	resp, err := http.Post(srv.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data struct {
			Record model.Audio `json:"record"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 42.0, out.Data.Record.Duration)
	assert.Equal(t, "payload", probe.content)
}

func TestUploadRemovesObjectWhenRegistrationFails(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.url = ""

	status, resp := upload(t, env, map[string]string{"category": "images", "register": "true"}, "broken.png")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", resp.Code)
	assert.Equal(t, []string{"images/broken.png"}, env.store.removed)
}

func TestUploadRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	status, resp := upload(t, env, map[string]string{"category": "videos"}, "clip.mp4")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", resp.Code)
	assert.Empty(t, env.store.objects)
}

func TestAuthGuardsFunctions(t *testing.T) {
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.JWTSecret = "secret"
		cfg.AdminPasswordHash = hash
	})

	status, resp := env.call(t, model.FuncStatistics, model.StatisticsRequest{}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", resp.Code)

	login := func(password string) (int, *model.Response) {
		body, _ := json.Marshal(LoginRequest{Username: "admin", Password: password})
		r, err := http.Post(env.srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer r.Body.Close()
		var out model.Response
		require.NoError(t, json.NewDecoder(r.Body).Decode(&out))
		return r.StatusCode, &out
	}

	status, _ = login("wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp = login("pw")
	require.Equal(t, http.StatusOK, status, resp.Error)
	var token LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &token))
	require.NotEmpty(t, token.Token)

	status, resp = env.call(t, model.FuncStatistics, model.StatisticsRequest{}, token.Token)
	assert.Equal(t, http.StatusOK, status, resp.Error)
}

func TestChangeFeedReceivesMutations(t *testing.T) {
	env := newTestEnv(t, nil)

	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/changes?collections=categories"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	status, resp := env.call(t, model.FuncCategory, model.AddCategoryRequest{Name: "睡眠"}, "")
	require.Equal(t, http.StatusOK, status, resp.Error)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg changefeed.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.NotNil(t, msg.Event)
	assert.Equal(t, model.CollectionCategories, msg.Event.Collection)
	assert.Equal(t, model.ActionAdd, msg.Event.Action)
}
