package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-asset-vault/internal/config"
	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/storage"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB в контейнере один раз на весь пакет тестов.
// Адрес контейнера прокидывается в ENV DATABASE_URL, а каждая спецификация
// создаёт свою БД с уникальным именем (см. newTestConfig).
// Без GO_TEST_INTEGRATION интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
	}

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	_ = os.Setenv("DATABASE_URL", uri)

	code := m.Run()

	// Гасим контейнер *после* выполнения пакета тестов.
	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// newTestConfig создаёт конфиг с отдельной тестовой БД.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests disabled; set GO_TEST_INTEGRATION=1")
	}

	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		baseURL = "mongodb://localhost:27017"
	}

	dbName := "asset_vault_test_" + uuid.New().String()
	if baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL + dbName
	} else {
		baseURL = baseURL + "/" + dbName
	}

	return &config.Config{
		DB: config.DBConfig{
			URL: baseURL,
		},
	}
}

// mustNewMongo создаёт подключение к тестовой БД и регистрирует очистку по завершении теста.
func mustNewMongo(t *testing.T, cfg *config.Config) *Mongo {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("cannot connect to MongoDB in container: %v (DATABASE_URL=%s)", err, cfg.DB.URL)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func newTestUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "User+" + uuid.NewString()[:8] + "@Example.COM",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         models.RoleUser,
	}
}

// TestSaveUser_NormalizesEmailAndTimestamps — email приводится к нижнему
// регистру, временные поля проставляются при записи.
func TestSaveUser_NormalizesEmailAndTimestamps(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	u := newTestUser()
	rawEmail := u.Email

	if err := m.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser error: %v", err)
	}

	if u.Email == rawEmail {
		t.Fatalf("email not normalized: %q", u.Email)
	}

	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: created=%v updated=%v", u.CreatedAt, u.UpdatedAt)
	}

	got, err := m.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserByID error: %v", err)
	}

	if got.Email != u.Email || got.PasswordHash != u.PasswordHash || got.Role != u.Role {
		t.Fatalf("stored user mismatch: %+v vs %+v", got, u)
	}
}

// TestSaveUser_DuplicateEmail — повтор email (в любом регистре) даёт ErrAlreadyExists.
func TestSaveUser_DuplicateEmail(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	u := newTestUser()
	if err := m.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser error: %v", err)
	}

	dup := newTestUser()
	dup.Email = u.Email // уже нормализован первой записью.
	if err := m.SaveUser(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

// TestUserByEmail_CaseInsensitiveLookup — поиск не зависит от регистра входного email.
func TestUserByEmail_CaseInsensitiveLookup(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	u := newTestUser()
	if err := m.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser error: %v", err)
	}

	got, err := m.UserByEmail(ctx, "  "+u.Email+"  ")
	if err != nil {
		t.Fatalf("UserByEmail error: %v", err)
	}

	if got.ID != u.ID {
		t.Fatalf("UserByEmail returned wrong user: %s vs %s", got.ID, u.ID)
	}

	if _, err := m.UserByEmail(ctx, "absent@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestUserByID_NotFound — отсутствие записи по ID.
func TestUserByID_NotFound(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if _, err := m.UserByID(ctx, uuid.New()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestSaveAsset_SetsDefaults — генерация ID, статус active и временные поля.
func TestSaveAsset_SetsDefaults(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	owner := uuid.New()
	out, err := m.SaveAsset(ctx, &models.Asset{
		Title:    "logo",
		FilePath: "assets/" + owner.String() + "/" + uuid.NewString() + ".png",
		FileType: "image/png",
		Size:     1024,
		OwnerID:  owner,
		Tags:     []string{"brand"},
	})
	if err != nil {
		t.Fatalf("SaveAsset error: %v", err)
	}

	if out.ID.IsZero() {
		t.Fatalf("expected generated ID")
	}

	if out.Status != models.AssetStatusActive {
		t.Fatalf("status = %q, want %q", out.Status, models.AssetStatusActive)
	}

	if out.CreatedAt.IsZero() || out.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set")
	}

	got, err := m.AssetByID(ctx, out.ID.Hex(), owner)
	if err != nil {
		t.Fatalf("AssetByID error: %v", err)
	}

	if got.Title != "logo" || got.Size != 1024 || got.OwnerID != owner {
		t.Fatalf("stored asset mismatch: %+v", got)
	}
}

// TestAssetByID_OwnerScoped — чужой владелец не видит ассет.
func TestAssetByID_OwnerScoped(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	owner := uuid.New()
	a, err := m.SaveAsset(ctx, &models.Asset{Title: "doc", OwnerID: owner})
	if err != nil {
		t.Fatalf("SaveAsset error: %v", err)
	}

	if _, err := m.AssetByID(ctx, a.ID.Hex(), uuid.New()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound for foreign owner, got %v", err)
	}
}

// TestAssetByID_NotFoundOnBadID — невалидный формат id трактуем как отсутствие записи.
func TestAssetByID_NotFoundOnBadID(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if _, err := m.AssetByID(ctx, "deadbeef", uuid.New()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound for bad id format, got %v", err)
	}
}

// TestAssetsByOwner_OrderAndFiltering — только активные ассеты владельца,
// новые первыми.
func TestAssetsByOwner_OrderAndFiltering(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	owner := uuid.New()
	var last *models.Asset
	for i := 0; i < 3; i++ {
		a, err := m.SaveAsset(ctx, &models.Asset{
			Title:   fmt.Sprintf("asset-%d", i),
			OwnerID: owner,
		})
		if err != nil {
			t.Fatalf("SaveAsset(%d) error: %v", i, err)
		}
		last = a

		time.Sleep(10 * time.Millisecond)
	}

	// Чужой ассет в выдачу не попадает.
	if _, err := m.SaveAsset(ctx, &models.Asset{Title: "foreign", OwnerID: uuid.New()}); err != nil {
		t.Fatalf("SaveAsset(foreign) error: %v", err)
	}

	// Удалённый — тоже.
	if _, err := m.DeleteAsset(ctx, last.ID.Hex(), owner); err != nil {
		t.Fatalf("DeleteAsset error: %v", err)
	}

	items, err := m.AssetsByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("AssetsByOwner error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("len=%d, want 2", len(items))
	}

	if items[0].CreatedAt.Before(items[1].CreatedAt) {
		t.Fatalf("order DESC violated: %v THEN %v", items[0].CreatedAt, items[1].CreatedAt)
	}
}

// TestDeleteAsset_SoftDelete — статус меняется на deleted, повторное
// удаление и чтение активного дают ErrNotFound.
func TestDeleteAsset_SoftDelete(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	owner := uuid.New()
	a, err := m.SaveAsset(ctx, &models.Asset{Title: "tmp", OwnerID: owner})
	if err != nil {
		t.Fatalf("SaveAsset error: %v", err)
	}

	deleted, err := m.DeleteAsset(ctx, a.ID.Hex(), owner)
	if err != nil {
		t.Fatalf("DeleteAsset error: %v", err)
	}

	if deleted.Status != models.AssetStatusDeleted {
		t.Fatalf("status = %q, want %q", deleted.Status, models.AssetStatusDeleted)
	}

	if _, err := m.AssetByID(ctx, a.ID.Hex(), owner); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound for deleted asset, got %v", err)
	}

	if _, err := m.DeleteAsset(ctx, a.ID.Hex(), owner); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound on repeated delete, got %v", err)
	}
}

// TestEnsureIndexes_Created — индексы, создаваемые ensureIndexes, существуют.
// Проверяем как по имени, так и по составу ключей — чтобы быть устойчивыми
// к различиям в авто-именовании.
func TestEnsureIndexes_Created(t *testing.T) {
	cfg := newTestConfig(t)
	m := mustNewMongo(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	var haveUniqEmail, haveOwnerList bool

	ucur, err := m.users.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("users Indexes().List error: %v", err)
	}
	defer ucur.Close(ctx)

	for ucur.Next(ctx) {
		var spec map[string]any
		if err := ucur.Decode(&spec); err != nil {
			t.Fatalf("decode index spec: %v", err)
		}

		if k, ok := spec["key"].(map[string]any); ok {
			unique, _ := spec["unique"].(bool)
			if numEq(k["email"], 1) && unique {
				haveUniqEmail = true
			}
		}
	}

	acur, err := m.assets.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("assets Indexes().List error: %v", err)
	}
	defer acur.Close(ctx)

	for acur.Next(ctx) {
		var spec map[string]any
		if err := acur.Decode(&spec); err != nil {
			t.Fatalf("decode index spec: %v", err)
		}

		if k, ok := spec["key"].(map[string]any); ok {
			if numEq(k["owner_id"], 1) && numEq(k["status"], 1) && numEq(k["created_at"], -1) {
				haveOwnerList = true
			}
		}
	}

	if !haveUniqEmail || !haveOwnerList {
		t.Fatalf("required indexes not found: uniq_email=%v, owner_list=%v", haveUniqEmail, haveOwnerList)
	}
}

// numEq — безопасное сравнение числовых значений из BSON спецификаций индексов.
func numEq(v any, want int) bool {
	switch n := v.(type) {
	case int:
		return n == want
	case int32:
		return int(n) == want
	case int64:
		return int(n) == want
	case float64:
		return int(n) == want
	default:
		return false
	}
}
