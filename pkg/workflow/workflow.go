// Package workflow implements the one-shot credential bootstrap: look up
// the GPG passphrase in the credential store, download the encrypted token,
// decrypt it, pull the private files with the token as a bearer credential,
// and erase every transient artifact no matter how the run ends.
package workflow

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/credstore"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/gpg"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/shredder"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Decryptor decrypts a ciphertext file into a plaintext file. The
// passphrase must never appear in an argument vector.
type Decryptor interface {
	Decrypt(ctx context.Context, ciphertextPath, outputPath string, passphrase []byte) error
}

// Downloader fetches a URL into a local file, failing on any non-2xx.
type Downloader interface {
	DownloadFile(ctx context.Context, url string, headers map[string]string, dest string, mode os.FileMode) error
}

// Eraser destroys transient files beyond casual recovery.
type Eraser interface {
	Erase(ctx context.Context, path string) error
	EraseAll(ctx context.Context, paths ...string) error
}

// Workflow wires the collaborators for one bootstrap run. Construct with
// New; the zero value is not usable.
type Workflow struct {
	cfg       *Config
	store     credstore.Store
	decryptor Decryptor
	client    Downloader
	eraser    Eraser
	lookPath  func(string) bool
	tempDir   string
}

// Option overrides a collaborator, mainly for tests.
type Option func(*Workflow)

func WithStore(s credstore.Store) Option      { return func(w *Workflow) { w.store = s } }
func WithDecryptor(d Decryptor) Option        { return func(w *Workflow) { w.decryptor = d } }
func WithDownloader(d Downloader) Option      { return func(w *Workflow) { w.client = d } }
func WithEraser(e Eraser) Option              { return func(w *Workflow) { w.eraser = e } }
func WithLookPath(f func(string) bool) Option { return func(w *Workflow) { w.lookPath = f } }
func WithTempDir(dir string) Option           { return func(w *Workflow) { w.tempDir = dir } }

// New builds a Workflow from the configuration, using the real
// collaborators unless options replace them.
func New(cfg *Config, opts ...Option) (*Workflow, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Workflow{
		cfg:      cfg,
		lookPath: execute.CommandExists,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.store == nil {
		store, err := credstore.New(cfg.StoreBackend)
		if err != nil {
			return nil, err
		}
		w.store = store
	}
	if w.decryptor == nil {
		w.decryptor = gpg.New()
	}
	if w.client == nil {
		client, err := httpclient.NewClient(httpclient.DefaultConfig())
		if err != nil {
			return nil, err
		}
		w.client = client
	}
	if w.eraser == nil {
		w.eraser = shredder.New()
	}
	return w, nil
}

// Run executes the bootstrap. Fail-fast: each step is a strict precondition
// for the next, no step is retried, and cleanup of transient secret
// material runs on every exit path including cancellation.
func (w *Workflow) Run(rc *tf_io.RuntimeContext) (err error) {
	logger := otelzap.Ctx(rc.Ctx)

	var tempFiles []string
	var passphrase, token []byte
	defer func() {
		w.cleanup(rc.Ctx, tempFiles)
		shredder.Zero(passphrase)
		shredder.Zero(token)
	}()

	// Step 1: preflight. The decryption tool is required; the secure-delete
	// tool is advisory because the in-process overwrite covers its absence.
	logger.Debug("Preflight: checking external tools")
	if !w.lookPath(gpg.Binary) {
		return &ToolMissingError{Name: gpg.Binary}
	}
	if !w.lookPath(shredder.Binary) {
		logger.Warn("shred not installed; will fall back to in-process overwrite")
	}

	// Step 2: secret lookup.
	logger.Info("Looking up passphrase", zap.String("entry", w.cfg.PassphraseEntry))
	passphrase, err = w.store.Lookup(rc.Ctx, w.cfg.PassphraseEntry)
	switch {
	case cerr.Is(err, credstore.ErrNotFound):
		return &SecretNotFoundError{Entry: w.cfg.PassphraseEntry}
	case cerr.Is(err, credstore.ErrEmptySecret):
		return ErrSecretEmpty
	case err != nil:
		return err
	}

	// Step 3: ciphertext fetch into a scoped temp file.
	ciphertextPath, err := newTempFile(w.tempDir, ".gpg")
	if err != nil {
		return err
	}
	tempFiles = append(tempFiles, ciphertextPath)

	logger.Info("Downloading encrypted token", zap.String("url", w.cfg.CiphertextURL))
	if err := w.client.DownloadFile(rc.Ctx, w.cfg.CiphertextURL, nil, ciphertextPath, 0600); err != nil {
		return &DownloadError{URL: w.cfg.CiphertextURL, Cause: err}
	}

	// Step 4: decrypt.
	plaintextPath, err := newTempFile(w.tempDir, ".txt")
	if err != nil {
		return err
	}
	tempFiles = append(tempFiles, plaintextPath)

	logger.Info("Decrypting token")
	if err := w.decryptor.Decrypt(rc.Ctx, ciphertextPath, plaintextPath, passphrase); err != nil {
		return &DecryptionError{Cause: err}
	}

	// Step 5: extract the secret. First line only, trimmed.
	token, err = readFirstLine(plaintextPath)
	if err != nil {
		return err
	}
	if len(token) == 0 {
		return ErrEmptySecret
	}

	// Step 6: use the secret. Abort on the first failed target; there is no
	// partial-success state.
	headers := map[string]string{
		"Authorization": "token " + string(token),
	}
	for _, target := range w.cfg.Targets {
		url := strings.TrimSuffix(w.cfg.PrivateBaseURL, "/") + "/" + target.RemotePath
		dest := filepath.Join(w.cfg.OutputDir, target.OutputName)
		logger.Info("Downloading artifact",
			zap.String("remote_path", target.RemotePath),
			zap.String("dest", dest),
		)
		if err := w.client.DownloadFile(rc.Ctx, url, headers, dest, 0644); err != nil {
			return &DownloadError{URL: target.RemotePath, Cause: err}
		}
	}

	logger.Info("Bootstrap complete", zap.Int("artifacts", len(w.cfg.Targets)))
	return nil
}

// cleanup erases the transient files. It never fails the run: the secret
// material is already as destroyed as we can make it, and the process is
// about to exit anyway. Runs on a cancellation-proof context so an
// interrupt still erases everything.
func (w *Workflow) cleanup(ctx context.Context, tempFiles []string) {
	if len(tempFiles) == 0 {
		return
	}
	cleanupCtx := context.WithoutCancel(ctx)
	logger := otelzap.Ctx(cleanupCtx)
	if err := w.eraser.EraseAll(cleanupCtx, tempFiles...); err != nil {
		logger.Warn("Failed to securely erase transient files", zap.Error(err))
	}
}

// readFirstLine returns the first line of the file, whitespace-trimmed.
func readFirstLine(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cerr.Wrap(err, "read decrypted token")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, cerr.Wrap(err, "read decrypted token")
		}
		return nil, nil
	}
	return []byte(strings.TrimSpace(scanner.Text())), nil
}
