// pkg/workflow/workflow_test.go

package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/credstore"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/shredder"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore returns a canned passphrase or error.
type fakeStore struct {
	value []byte
	err   error
	calls int
}

func (s *fakeStore) Lookup(ctx context.Context, entry string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.value, nil
}

// fakeDecryptor writes canned plaintext to the output path.
type fakeDecryptor struct {
	plaintext []byte
	err       error
	called    bool
}

func (d *fakeDecryptor) Decrypt(ctx context.Context, in, out string, passphrase []byte) error {
	d.called = true
	if d.err != nil {
		return d.err
	}
	return os.WriteFile(out, d.plaintext, 0600)
}

// fakeDownloader counts calls and fails according to failOn.
type fakeDownloader struct {
	calls  atomic.Int64
	failOn func(url string) error
	body   []byte
}

func (f *fakeDownloader) DownloadFile(ctx context.Context, url string, headers map[string]string, dest string, mode os.FileMode) error {
	f.calls.Add(1)
	if f.failOn != nil {
		if err := f.failOn(url); err != nil {
			return err
		}
	}
	body := f.body
	if body == nil {
		body = []byte("data")
	}
	return os.WriteFile(dest, body, mode)
}

// recordingEraser remembers what it was asked to destroy.
type recordingEraser struct {
	erased []string
}

func (r *recordingEraser) Erase(ctx context.Context, path string) error {
	r.erased = append(r.erased, path)
	return os.Remove(path)
}

func (r *recordingEraser) EraseAll(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if err := r.Erase(ctx, p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		StoreBackend:    credstore.BackendKeyring,
		PassphraseEntry: "test-entry",
		CiphertextURL:   "https://example.com/keys/token.txt.gpg",
		PrivateBaseURL:  "https://example.com/private",
		Targets: []Target{
			{RemotePath: "setup_rpi.py", OutputName: "setup_rpi.py"},
			{RemotePath: "config.ini", OutputName: "config.ini"},
		},
		OutputDir: t.TempDir(),
	}
}

func testContext(t *testing.T) *tf_io.RuntimeContext {
	t.Helper()
	return tf_io.NewContext(context.Background(), "test")
}

func allToolsPresent(string) bool { return true }

func newTestWorkflow(t *testing.T, cfg *Config, opts ...Option) *Workflow {
	t.Helper()
	base := []Option{
		WithLookPath(allToolsPresent),
		WithTempDir(t.TempDir()),
	}
	wf, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return wf
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, TempPrefix+"*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "transient artifacts must not survive a run")
}

func TestRun_ToolMissingBeforeAnyNetworkCall(t *testing.T) {
	store := &fakeStore{value: []byte("pw")}
	dl := &fakeDownloader{}
	wf := newTestWorkflow(t, testConfig(t),
		WithLookPath(func(string) bool { return false }),
		WithStore(store),
		WithDownloader(dl),
		WithDecryptor(&fakeDecryptor{}),
		WithEraser(&recordingEraser{}),
	)

	err := wf.Run(testContext(t))

	var toolErr *ToolMissingError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "gpg", toolErr.Name)
	assert.Zero(t, store.calls, "credential store must not be queried")
	assert.Zero(t, dl.calls.Load(), "no network call may be attempted")
}

func TestRun_SecretLookupFailures(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		check    func(t *testing.T, err error)
	}{
		{
			name:     "secret not found",
			storeErr: credstore.ErrNotFound,
			check: func(t *testing.T, err error) {
				var nf *SecretNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "test-entry", nf.Entry)
			},
		},
		{
			name:     "secret empty",
			storeErr: credstore.ErrEmptySecret,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrSecretEmpty)
			},
		},
		{
			name:     "store unavailable",
			storeErr: &credstore.UnavailableError{Backend: "keyring", Cause: cerr.New("no dbus")},
			check: func(t *testing.T, err error) {
				assert.True(t, credstore.IsUnavailable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dl := &fakeDownloader{}
			wf := newTestWorkflow(t, testConfig(t),
				WithStore(&fakeStore{err: tt.storeErr}),
				WithDownloader(dl),
				WithDecryptor(&fakeDecryptor{}),
				WithEraser(&recordingEraser{}),
			)

			err := wf.Run(testContext(t))
			require.Error(t, err)
			tt.check(t, err)
			assert.Zero(t, dl.calls.Load(), "no network call may be attempted")
		})
	}
}

func TestRun_CiphertextFetchFailureSkipsDecryption(t *testing.T) {
	cfg := testConfig(t)
	dec := &fakeDecryptor{}
	eraser := &recordingEraser{}
	dl := &fakeDownloader{
		failOn: func(url string) error {
			if url == cfg.CiphertextURL {
				return cerr.New("unexpected status 404")
			}
			return nil
		},
	}
	wf := newTestWorkflow(t, cfg,
		WithStore(&fakeStore{value: []byte("pw")}),
		WithDownloader(dl),
		WithDecryptor(dec),
		WithEraser(eraser),
	)

	err := wf.Run(testContext(t))

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, cfg.CiphertextURL, dlErr.URL)
	assert.False(t, dec.called, "decryption must never run after a failed fetch")
	assert.Len(t, eraser.erased, 1, "the ciphertext temp file is still erased")
}

func TestRun_DecryptionFailureLeavesNoPlaintext(t *testing.T) {
	tempDir := t.TempDir()
	eraser := &recordingEraser{}
	wf := newTestWorkflow(t, testConfig(t),
		WithTempDir(tempDir),
		WithStore(&fakeStore{value: []byte("wrong-pw")}),
		WithDownloader(&fakeDownloader{}),
		WithDecryptor(&fakeDecryptor{err: cerr.New("gpg decryption failed")}),
		WithEraser(eraser),
	)

	err := wf.Run(testContext(t))

	var decErr *DecryptionError
	require.ErrorAs(t, err, &decErr)
	assert.Len(t, eraser.erased, 2, "both temp files are erased")
	assertNoTempFiles(t, tempDir)
}

func TestRun_EmptyDecryptedTokenSkipsPrivateEndpoint(t *testing.T) {
	cfg := testConfig(t)
	dl := &fakeDownloader{}
	wf := newTestWorkflow(t, cfg,
		WithStore(&fakeStore{value: []byte("pw")}),
		WithDownloader(dl),
		WithDecryptor(&fakeDecryptor{plaintext: []byte("   \n")}),
		WithEraser(&recordingEraser{}),
	)

	err := wf.Run(testContext(t))

	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.Equal(t, int64(1), dl.calls.Load(), "only the ciphertext fetch may run")
}

func TestRun_FirstTargetFailureAbortsRemaining(t *testing.T) {
	cfg := testConfig(t)
	var seen []string
	dl := &fakeDownloader{
		failOn: func(url string) error {
			seen = append(seen, url)
			if url == cfg.PrivateBaseURL+"/setup_rpi.py" {
				return cerr.New("unexpected status 403")
			}
			return nil
		},
	}
	wf := newTestWorkflow(t, cfg,
		WithStore(&fakeStore{value: []byte("pw")}),
		WithDownloader(dl),
		WithDecryptor(&fakeDecryptor{plaintext: []byte("abc123\n")}),
		WithEraser(&recordingEraser{}),
	)

	err := wf.Run(testContext(t))

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, "setup_rpi.py", dlErr.URL)
	assert.NotContains(t, seen, cfg.PrivateBaseURL+"/config.ini",
		"later targets must not be attempted after a failure")
}

func TestRun_EndToEndSuccess(t *testing.T) {
	ciphertext := []byte("encrypted-bytes")
	var authHeaders []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/keys/token.txt.gpg":
			w.Write(ciphertext)
		case "/private/setup_rpi.py", "/private/config.ini":
			authHeaders = append(authHeaders, r.Header.Get("Authorization"))
			if r.Header.Get("Authorization") != "token abc123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte("content of " + r.URL.Path))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	outputDir := t.TempDir()
	tempDir := t.TempDir()
	cfg := &Config{
		StoreBackend:    credstore.BackendKeyring,
		PassphraseEntry: "test-entry",
		CiphertextURL:   server.URL + "/keys/token.txt.gpg",
		PrivateBaseURL:  server.URL + "/private",
		Targets: []Target{
			{RemotePath: "setup_rpi.py", OutputName: "setup_rpi.py"},
			{RemotePath: "config.ini", OutputName: "config.ini"},
		},
		OutputDir: outputDir,
	}

	client, err := httpclient.NewClient(nil)
	require.NoError(t, err)

	wf := newTestWorkflow(t, cfg,
		WithTempDir(tempDir),
		WithStore(&fakeStore{value: []byte("correct-pw")}),
		WithDownloader(client),
		WithDecryptor(&fakeDecryptor{plaintext: []byte("abc123\n")}),
		WithEraser(&shredder.Shredder{Passes: 2, SkipTool: true}),
	)

	require.NoError(t, wf.Run(testContext(t)))

	for _, name := range []string{"setup_rpi.py", "config.ini"} {
		data, err := os.ReadFile(filepath.Join(outputDir, name))
		require.NoError(t, err)
		assert.Equal(t, "content of /private/"+name, string(data))
	}
	require.Len(t, authHeaders, 2)
	for _, h := range authHeaders {
		assert.Equal(t, "token abc123", h)
	}
	assertNoTempFiles(t, tempDir)
}

func TestRun_TokenIsFirstLineTrimmed(t *testing.T) {
	cfg := testConfig(t)
	var gotAuth string
	dl := &fakeDownloader{}
	dec := &fakeDecryptor{plaintext: []byte("  abc123  \nsecond line ignored\n")}

	// Wrap the fake downloader to capture the header on target fetches.
	capture := downloadFunc(func(ctx context.Context, url string, headers map[string]string, dest string, mode os.FileMode) error {
		if headers != nil {
			gotAuth = headers["Authorization"]
		}
		return dl.DownloadFile(ctx, url, headers, dest, mode)
	})

	wf := newTestWorkflow(t, cfg,
		WithStore(&fakeStore{value: []byte("pw")}),
		WithDownloader(capture),
		WithDecryptor(dec),
		WithEraser(&recordingEraser{}),
	)

	require.NoError(t, wf.Run(testContext(t)))
	assert.Equal(t, "token abc123", gotAuth)
}

type downloadFunc func(ctx context.Context, url string, headers map[string]string, dest string, mode os.FileMode) error

func (f downloadFunc) DownloadFile(ctx context.Context, url string, headers map[string]string, dest string, mode os.FileMode) error {
	return f(ctx, url, headers, dest, mode)
}

func TestRun_CleanupRunsOnEveryExitPath(t *testing.T) {
	tests := []struct {
		name string
		opts func(cfg *Config) []Option
	}{
		{
			name: "fetch failure",
			opts: func(cfg *Config) []Option {
				return []Option{
					WithStore(&fakeStore{value: []byte("pw")}),
					WithDownloader(&fakeDownloader{failOn: func(string) error { return cerr.New("boom") }}),
					WithDecryptor(&fakeDecryptor{}),
				}
			},
		},
		{
			name: "decrypt failure",
			opts: func(cfg *Config) []Option {
				return []Option{
					WithStore(&fakeStore{value: []byte("pw")}),
					WithDownloader(&fakeDownloader{}),
					WithDecryptor(&fakeDecryptor{err: cerr.New("bad passphrase")}),
				}
			},
		},
		{
			name: "success",
			opts: func(cfg *Config) []Option {
				return []Option{
					WithStore(&fakeStore{value: []byte("pw")}),
					WithDownloader(&fakeDownloader{}),
					WithDecryptor(&fakeDecryptor{plaintext: []byte("tok\n")}),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			cfg := testConfig(t)
			opts := append(tt.opts(cfg),
				WithTempDir(tempDir),
				WithEraser(&shredder.Shredder{Passes: 1, SkipTool: true}),
			)
			wf := newTestWorkflow(t, cfg, opts...)

			_ = wf.Run(testContext(t))
			assertNoTempFiles(t, tempDir)
		})
	}
}
