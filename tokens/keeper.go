package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/andreyvit/formkit/logging"
)

const (
	KindCSRF    = "csrf"
	KindCaptcha = "captcha"

	DefaultLifetime = 300 * time.Second
)

// Record is a stored challenge. Expiry is part of the record and is checked on load,
// whether or not the backend expires keys on its own.
type Record struct {
	Kind    string    `msgpack:"k"`
	Value   string    `msgpack:"v"`
	Answer  string    `msgpack:"a,omitempty"`
	Issued  time.Time `msgpack:"i"`
	Expires time.Time `msgpack:"e"`
}

func (r *Record) Expired(now time.Time) bool {
	return !r.Expires.IsZero() && !now.Before(r.Expires)
}

// Keeper issues and loads the challenges of one session.
type Keeper struct {
	Store   Store
	Session string
	Now     func() time.Time
}

func NewKeeper(store Store, session string) *Keeper {
	return &Keeper{Store: store, Session: session, Now: time.Now}
}

func (k *Keeper) now() time.Time {
	if k.Now == nil {
		return time.Now()
	}
	return k.Now()
}

func (k *Keeper) key(kind string) string {
	return k.Session + ":" + kind
}

// Load returns nil when there is no live record of the given kind.
func (k *Keeper) Load(ctx context.Context, kind string) (*Record, error) {
	data, err := k.Store.Get(ctx, k.key(kind))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		logging.From(ctx).Warn("tokens: discarding undecodable record", "kind", kind, "err", err)
		return nil, k.Clear(ctx, kind)
	}
	if rec.Expired(k.now()) {
		return nil, k.Clear(ctx, kind)
	}
	return &rec, nil
}

func (k *Keeper) Save(ctx context.Context, rec *Record) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !rec.Expires.IsZero() {
		ttl = rec.Expires.Sub(k.now())
	}
	return k.Store.Set(ctx, k.key(rec.Kind), data, ttl)
}

func (k *Keeper) Clear(ctx context.Context, kind string) error {
	return k.Store.Delete(ctx, k.key(kind))
}

func (k *Keeper) issue(ctx context.Context, kind string, lifetime time.Duration, value, answer string) (*Record, error) {
	now := k.now()
	rec := &Record{
		Kind:   kind,
		Value:  value,
		Answer: answer,
		Issued: now,
	}
	if lifetime > 0 {
		rec.Expires = now.Add(lifetime)
	}
	if err := k.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("tokens: cannot save %s: %w", kind, err)
	}
	logging.From(ctx).Debug("tokens: issued", "kind", kind, "expires", rec.Expires)
	return rec, nil
}

// CSRF returns the live CSRF token of the session, issuing a new one if needed.
func (k *Keeper) CSRF(ctx context.Context, lifetime time.Duration) (*Record, error) {
	rec, err := k.Load(ctx, KindCSRF)
	if err != nil || rec != nil {
		return rec, err
	}
	return k.issue(ctx, KindCSRF, lifetime, uuid.NewString(), "")
}

// Captcha returns the live challenge, issuing a new one when there is none or when
// refresh is set. An empty question generates a random equation; a custom question
// without an answer must itself be an equation.
func (k *Keeper) Captcha(ctx context.Context, lifetime time.Duration, question, answer string, refresh bool) (*Record, error) {
	if !refresh {
		rec, err := k.Load(ctx, KindCaptcha)
		if err != nil || rec != nil {
			return rec, err
		}
	}
	if question == "" {
		eq := RandomEquation()
		question, answer = eq.String(), fmt.Sprint(eq.Answer())
	} else if answer == "" {
		eq, err := ParseEquation(question)
		if err != nil {
			return nil, err
		}
		answer = fmt.Sprint(eq.Answer())
	}
	return k.issue(ctx, KindCaptcha, lifetime, question, answer)
}
