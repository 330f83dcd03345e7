package handlers

// Хендлеры тестируются поверх настоящего сервисного слоя: моками закрыты
// только границы (БД, файловое и revocation-хранилища).
//
// Моки сгенерированы:
//
//	mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks
//	mockgen -source=./internal/cache/cache.go -destination=./mocks/cache.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-asset-vault/internal/config"
	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/service"
	"github.com/pribylovaa/go-asset-vault/internal/storage"
	"github.com/pribylovaa/go-asset-vault/mocks"
)

const testPassword = "Str0ng!pass"

func testConfig() *config.Config {
	return &config.Config{
		Env: "local",
		Auth: config.AuthConfig{
			AccessSecret:    "test-access-secret",
			RefreshSecret:   "test-refresh-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
			Issuer:          "asset-vault",
			Audience:        []string{"asset-vault-api"},
		},
		Upload: config.UploadConfig{MaxSizeBytes: 1 << 20},
	}
}

type testEnv struct {
	h      *Handlers
	cfg    *config.Config
	st     *mocks.MockStorage
	files  *mocks.MockFileStorage
	rstore *mocks.MockRevocationStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	files := mocks.NewMockFileStorage(ctrl)
	rstore := mocks.NewMockRevocationStore(ctrl)

	cfg := testConfig()
	svc := service.New(st, files, cfg)
	svc.SetRevocationStore(rstore)

	return &testEnv{
		h:      New(svc, cfg),
		cfg:    cfg,
		st:     st,
		files:  files,
		rstore: rstore,
	}
}

func postJSON(t *testing.T, target string, body any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// cookieByName достаёт Set-Cookie из ответа; nil, если cookie не выставлена.
func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeAuthResponse(t *testing.T, rr *httptest.ResponseRecorder) authResponse {
	t.Helper()

	var out authResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func decodeErrCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env.Error.Code
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// runTx — подмена TxRunner: исполняет unit of work без транзакции.
func runTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// registerUser прогоняет регистрацию через хендлер и возвращает созданного
// пользователя вместе с refresh-cookie для последующих refresh/logout сценариев.
func registerUser(t *testing.T, env *testEnv, email string) (*models.User, *http.Cookie) {
	t.Helper()

	var saved *models.User

	env.st.EXPECT().
		RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
	env.st.EXPECT().
		UserByEmail(gomock.Any(), email).
		Return(nil, storage.ErrNotFound)
	env.st.EXPECT().
		SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})
	env.rstore.EXPECT().
		Put(gomock.Any(), email, gomock.Any(), env.cfg.Auth.RefreshTokenTTL).
		Return(nil)

	rr := httptest.NewRecorder()
	env.h.RegisterUser(rr, postJSON(t, "/auth/register", map[string]string{
		"email":    email,
		"password": testPassword,
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, saved)

	cookie := cookieByName(rr, refreshCookieName)
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)

	return saved, cookie
}

// multipartBody собирает multipart/form-data с файлом и полями формы.
func multipartBody(t *testing.T, fields map[string]string, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if filename != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		hdr.Set("Content-Type", contentType)

		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}
