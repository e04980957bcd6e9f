package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LogickStudio/demaincloset/internal/auth"
	"github.com/LogickStudio/demaincloset/internal/domain"
	"github.com/LogickStudio/demaincloset/internal/repos"
	"github.com/LogickStudio/demaincloset/internal/services"
)

func TestSignupAndLogin(t *testing.T) {
	e := newEnv(t)

	sess, err := e.authSvc.Signup(services.SignupInput{
		Name: "Amara", Email: "Amara@Example.com", Password: "Passw0rd!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, "amara@example.com", sess.User.Email)
	require.True(t, strings.HasPrefix(sess.User.ReferralCode, "DEMAIN-"))
	require.Len(t, sess.User.ReferralCode, len("DEMAIN-")+6)

	// duplicate email rejected regardless of case
	_, err = e.authSvc.Signup(services.SignupInput{
		Name: "Other", Email: "AMARA@example.com", Password: "Passw0rd!",
	})
	require.ErrorIs(t, err, services.ErrEmailTaken)

	sess2, err := e.authSvc.Login("amara@example.com", "Passw0rd!")
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, sess2.User.ID)

	_, err = e.authSvc.Login("amara@example.com", "wrong-pass1")
	require.ErrorIs(t, err, services.ErrBadCreds)
	_, err = e.authSvc.Login("nobody@example.com", "Passw0rd!")
	require.ErrorIs(t, err, services.ErrBadCreds)

	u, err := e.authSvc.CurrentUser(sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, u.ID)
}

// codeTail mirrors how reward codes embed a referral code's last four
// characters, hyphens stripped.
func codeTail(code string) string {
	s := strings.ToUpper(strings.ReplaceAll(code, "-", ""))
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}

func TestCurrentUser_DeletedAccount(t *testing.T) {
	e := newEnv(t)
	sess, err := e.authSvc.Signup(services.SignupInput{
		Name: "Amara", Email: "amara@example.com", Password: "Passw0rd!",
	})
	require.NoError(t, err)

	// a live token for a since-deleted account must not resolve
	_, err = e.db.Exec(`DELETE FROM users WHERE id = ?`, sess.User.ID)
	require.NoError(t, err)

	_, err = e.authSvc.CurrentUser(sess.Token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSignup_UnknownReferralRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.authSvc.Signup(services.SignupInput{
		Name: "Tunde", Email: "tunde@example.com", Password: "Passw0rd!",
		ReferralCode: "DEMAIN-NOPE99",
	})
	require.ErrorIs(t, err, services.ErrBadReferral)
}

func TestSignup_ReferralMintsRewardPair(t *testing.T) {
	e := newEnv(t)
	referrer, err := e.authSvc.Signup(services.SignupInput{
		Name: "Amara", Email: "amara@example.com", Password: "Passw0rd!",
	})
	require.NoError(t, err)

	sess, err := e.authSvc.Signup(services.SignupInput{
		Name: "Tunde", Email: "tunde@example.com", Password: "Passw0rd!",
		ReferralCode: strings.ToLower(referrer.User.ReferralCode),
	})
	require.NoError(t, err)
	require.Equal(t, referrer.User.ReferralCode, sess.User.ReferredByCode)

	// WELCOME carries the tail of the new user's own code, THANKS the
	// referrer's
	welcomeTail := codeTail(sess.User.ReferralCode)
	thanksTail := codeTail(referrer.User.ReferralCode)

	welcome, err := e.referrals.RewardsFor(sess.User.ID)
	require.NoError(t, err)
	require.Len(t, welcome, 1)
	require.True(t, strings.HasPrefix(welcome[0].Code, "WELCOME-"+welcomeTail+"-"), welcome[0].Code)
	require.Equal(t, domain.DiscountPercentage, welcome[0].DiscountType)
	require.True(t, welcome[0].MinPurchase.IntPart() == 2000)

	thanks, err := e.referrals.RewardsFor(referrer.User.ID)
	require.NoError(t, err)
	require.Len(t, thanks, 1)
	require.True(t, strings.HasPrefix(thanks[0].Code, "THANKS-"+thanksTail+"-"), thanks[0].Code)
	require.Equal(t, domain.DiscountFixed, thanks[0].DiscountType)
	require.True(t, thanks[0].Value.IntPart() == 1000)

	// referrer's list records the new signup
	ru, err := e.users.ByID(referrer.User.ID)
	require.NoError(t, err)
	require.Contains(t, repos.ReferredUsers(ru), sess.User.ID)
}

func TestRewardCoupons_OwnershipEnforced(t *testing.T) {
	e := newEnv(t)
	referrer := seedUser(t, e, "u-ref", "ref@example.com", "DEMAIN-REF001")
	newbie := seedUser(t, e, "u-new", "new@example.com", "DEMAIN-NEW001")

	welcome, _, err := e.referrals.IssueRewardPair(referrer, newbie)
	require.NoError(t, err)

	// the welcome coupon belongs to the new customer only
	now := time.Now()
	require.ErrorIs(t, welcome.Usable("u-ref", now), domain.ErrCouponNotAssigned)
	require.NoError(t, welcome.Usable("u-new", now))
}
