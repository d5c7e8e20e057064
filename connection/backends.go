package connection

import (
	"context"
	"fmt"
	"io"

	firebase "firebase.google.com/go"
	"github.com/rs/zerolog"

	"taskhub/config"
	"taskhub/memstore"
	"taskhub/services"
)

// objects in the memory store are not served over HTTP
const memoryObjectsURL = "memory://objects"

// Backends holds the storage, object and mail implementations selected by
// configuration, plus whatever needs closing on shutdown.
type Backends struct {
	Users   services.UserStore
	Tasks   services.TaskStore
	Objects services.ObjectStore
	Mailer  services.Mailer
	Captcha services.CaptchaVerifier

	closers []io.Closer
}

func (b *Backends) Close() error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenBackends connects every backend named by cfg. On error, whatever was
// already opened is closed again.
func OpenBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (_ *Backends, err error) {
	b := new(Backends)
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	var app *firebase.App
	if cfg.DataStore == config.BackendFirestore || cfg.ObjectStore == config.BackendFirebase {
		if app, err = FBConnection(ctx, cfg.Firebase); err != nil {
			return nil, err
		}
	}

	switch cfg.DataStore {
	case config.BackendFirestore:
		client, err := FirestoreClient(ctx, app)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client)
		b.Users = services.NewFirestoreUserStore(client)
		b.Tasks = services.NewFirestoreTaskStore(client)
	case config.BackendMemory:
		logger.Warn().Msg("using in-memory data store, data is lost on restart")
		b.Users = memstore.NewUserStore()
		b.Tasks = memstore.NewTaskStore()
	}

	switch cfg.ObjectStore {
	case config.BackendFirebase:
		bucket, err := StorageBucket(ctx, app)
		if err != nil {
			return nil, err
		}
		b.Objects = services.NewBucketObjectStore(logger, bucket, cfg.Firebase.StorageBucket)
	case config.BackendB2:
		objects, err := services.NewB2ObjectStore(ctx, logger, cfg.B2.AccountID, cfg.B2.AppKey, cfg.B2.Bucket)
		if err != nil {
			return nil, fmt.Errorf("connect b2: %w", err)
		}
		b.Objects = objects
	case config.BackendMemory:
		logger.Warn().Msg("using in-memory object store")
		b.Objects = memstore.NewObjectStore(memoryObjectsURL)
	}

	switch cfg.Mailer {
	case config.BackendSMTP:
		smtp := cfg.SMTP
		b.Mailer = services.NewSMTPMailer(logger, smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	case config.BackendLog:
		b.Mailer = services.NewLogMailer(logger)
	}

	if rc := cfg.Recaptcha; rc.Enabled() {
		verifier, err := services.NewRecaptchaVerifier(ctx, logger, rc.ProjectID, rc.SiteKey, rc.CredentialsFile)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, verifier)
		b.Captcha = verifier
	}

	return b, nil
}
