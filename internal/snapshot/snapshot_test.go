package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockS3 struct {
	key  string
	body []byte
	err  error
}

func (m *mockS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.key = aws.ToString(input.Key)
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.body = data
	return &s3.PutObjectOutput{}, nil
}

func testUploader(client s3Client) *Uploader {
	return &Uploader{
		cfg:    Config{S3: S3Config{Bucket: "club"}, Passphrase: "hunter2", Prefix: "catalogs"},
		client: client,
		logger: slog.Default(),
		now:    func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) },
	}
}

func TestUploadEncrypts(t *testing.T) {
	mock := &mockS3{}
	u := testUploader(mock)
	plain := []byte(`{"events":[]}`)

	key, err := u.Upload(context.Background(), "events", plain)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if key != "catalogs/events/2025-03-01T093000Z.json.enc" {
		t.Errorf("key = %q", key)
	}
	if mock.key != key {
		t.Errorf("uploaded key = %q, want %q", mock.key, key)
	}
	if bytes.Contains(mock.body, plain) {
		t.Error("uploaded body contains plaintext")
	}

	got, err := Decrypt(mock.body, "hunter2")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("decrypted = %q, want %q", got, plain)
	}
}

func TestUploadError(t *testing.T) {
	u := testUploader(&mockS3{err: errors.New("boom")})
	if _, err := u.Upload(context.Background(), "events", []byte("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestUploadDisabled(t *testing.T) {
	u := NewUploader(Config{S3: S3Config{Bucket: "club"}}, slog.Default())
	if u.Enabled() {
		t.Fatal("Enabled() = true without credentials")
	}
	key, err := u.Upload(context.Background(), "events", []byte("x"))
	if err != nil || key != "" {
		t.Errorf("Upload = (%q, %v), want no-op", key, err)
	}

	var nilUploader *Uploader
	if nilUploader.Enabled() {
		t.Error("nil uploader reports enabled")
	}
}

func TestNewUploaderEnabled(t *testing.T) {
	u := NewUploader(Config{
		S3:         S3Config{Bucket: "club", Region: "us-east-1", AccessKey: "a", SecretKey: "s"},
		Passphrase: "p",
	}, slog.Default())
	if !u.Enabled() {
		t.Error("Enabled() = false with full config")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	enc, err := Encrypt([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(enc, "wrong"); err == nil {
		t.Error("expected error with wrong passphrase")
	}
	if _, err := Decrypt([]byte("short"), "right"); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	a, _ := Encrypt([]byte("same"), "p")
	b, _ := Encrypt([]byte("same"), "p")
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("two encryptions share a salt")
	}
}
