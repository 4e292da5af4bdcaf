package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/bestworkers-api/internal/domain"
	jwtinfra "github.com/bestworkers-api/internal/infrastructure/jwt"
	"github.com/bestworkers-api/internal/infrastructure/memory"
	"github.com/bestworkers-api/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codeRe = regexp.MustCompile(`code is (\d+)`)

// inbox records the last code mailed to each address.
type inbox struct {
	mu    sync.Mutex
	codes map[string]string
	fail  bool
}

func (i *inbox) SendEmail(to, _, body string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fail {
		return errors.New("smtp unavailable")
	}
	m := codeRe.FindStringSubmatch(body)
	if m == nil {
		return fmt.Errorf("no code in body %q", body)
	}
	i.codes[to] = m[1]
	return nil
}

func (i *inbox) last(to string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[to]
}

type world struct {
	svc      Service
	accounts *memory.AccountStore
	otps     *memory.OTPStore
	inbox    *inbox
	tokens   *jwtinfra.Provider
	clock    *time.Time
}

func newWorld(t *testing.T) *world {
	t.Helper()
	gen, err := otp.NewGenerator(6)
	require.NoError(t, err)
	now := time.Now()
	w := &world{
		accounts: memory.NewAccountStore(),
		inbox:    &inbox{codes: map[string]string{}},
		tokens:   jwtinfra.NewHMACProvider([]byte("test-secret"), time.Hour),
		clock:    &now,
	}
	w.otps = memory.NewOTPStore().WithClock(func() time.Time { return *w.clock })
	w.svc = NewService(ServiceDeps{
		Accounts:  w.accounts,
		OTPs:      w.otps,
		Generator: gen,
		Hasher:    testHasher,
		Mailer:    w.inbox,
		Issuer:    w.tokens,
		OTPTTL:    5 * time.Minute,
	})
	return w
}

func TestScenario_RegisterVerifyLogin(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	require.NoError(t, w.svc.Register(ctx, registerReq()))
	code := w.inbox.last("a@x.com")
	require.Len(t, code, 6)

	_, err := w.accounts.GetByEmail(ctx, "a@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "no account before verification")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = w.svc.VerifyOTP(ctx, verifyReq(wrong))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	sess, err := w.svc.VerifyOTP(ctx, verifyReq(code))
	require.NoError(t, err)
	claims, err := w.tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Account.AccountID, claims.AccountID)

	_, err = w.otps.Find(ctx, "a@x.com", code)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "otp consumed")

	sess, err = w.svc.Login(ctx, LoginRequest{Email: "a@x.com", Pin: "1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	_, err = w.svc.Login(ctx, LoginRequest{Email: "a@x.com", Pin: "0000"})
	assert.True(t, errors.Is(err, domain.ErrAuth))
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestScenario_SecondVerifyWithSameCodeFails(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.svc.Register(ctx, registerReq()))
	code := w.inbox.last("a@x.com")

	_, err := w.svc.VerifyOTP(ctx, verifyReq(code))
	require.NoError(t, err)
	_, err = w.svc.VerifyOTP(ctx, verifyReq(code))
	require.Error(t, err)
	assert.Equal(t, "invalid or expired code", err.Error())
}

func TestScenario_ResendInvalidatesOldCode(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.svc.Register(ctx, registerReq()))
	old := w.inbox.last("a@x.com")

	var fresh string
	for i := 0; i < 5; i++ {
		require.NoError(t, w.svc.ResendOTP(ctx, ResendOTPRequest{Email: "a@x.com"}))
		if fresh = w.inbox.last("a@x.com"); fresh != old {
			break
		}
	}
	require.NotEqual(t, old, fresh)

	_, err := w.svc.VerifyOTP(ctx, verifyReq(old))
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = w.svc.VerifyOTP(ctx, verifyReq(fresh))
	assert.NoError(t, err)
}

func TestScenario_ExpiredCodeFails(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.svc.Register(ctx, registerReq()))
	code := w.inbox.last("a@x.com")

	*w.clock = w.clock.Add(6 * time.Minute)
	_, err := w.svc.VerifyOTP(ctx, verifyReq(code))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestScenario_MailFailureLeavesNoUsableCode(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.inbox.fail = true

	err := w.svc.Register(ctx, registerReq())
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	// The generator is random, so probe through the store directly.
	for _, c := range []string{"000000", "123456", "999999"} {
		_, err := w.otps.Find(ctx, "a@x.com", c)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	}
}

func TestScenario_PinNeverSerialized(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.svc.Register(ctx, registerReq()))
	sess, err := w.svc.VerifyOTP(ctx, verifyReq(w.inbox.last("a@x.com")))
	require.NoError(t, err)

	require.NotEmpty(t, sess.Account.PinHash)
	b, err := json.Marshal(sess.Account)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "pin")
	assert.NotContains(t, string(b), sess.Account.PinHash)

	stored, err := w.accounts.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	b, err = json.Marshal(stored)
	require.NoError(t, err)
	assert.NotContains(t, string(b), stored.PinHash)
}

func TestScenario_RegisterAfterActivationConflicts(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.svc.Register(ctx, registerReq()))
	_, err := w.svc.VerifyOTP(ctx, verifyReq(w.inbox.last("a@x.com")))
	require.NoError(t, err)

	err = w.svc.Register(ctx, registerReq())
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestScenario_ConcurrentActivationsSameMobile(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	emails := []string{"a@x.com", "b@x.com"}
	for _, e := range emails {
		req := registerReq()
		req.Email = e
		require.NoError(t, w.svc.Register(ctx, req))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(emails))
	for i, e := range emails {
		wg.Add(1)
		go func(i int, e string) {
			defer wg.Done()
			req := verifyReq(w.inbox.last(e))
			req.Email = e
			_, errs[i] = w.svc.VerifyOTP(ctx, req)
		}(i, e)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
}

func TestScenario_ConcurrentVerifySameEmail(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.svc.Register(ctx, registerReq()))
	code := w.inbox.last("a@x.com")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.svc.VerifyOTP(ctx, verifyReq(code))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		kind := domain.KindOf(err)
		assert.True(t, kind == domain.ErrConflict || kind == domain.ErrValidation, "unexpected error %v", err)
	}
	assert.Equal(t, 1, ok)
}
