package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LogickStudio/demaincloset/internal/domain"
	"github.com/LogickStudio/demaincloset/internal/repos"
)

// ReferralService mints the reward coupon pair when a referred signup
// completes: a welcome coupon owned by the new customer and a thank-you
// coupon owned by the referrer. Both rows land atomically; a partial
// pair would let one side claim a reward the other never got.
type ReferralService struct {
	Coupons *repos.CouponRepo
	Users   *repos.UserRepo
	now     func() time.Time
}

func NewReferralService(coupons *repos.CouponRepo, users *repos.UserRepo) *ReferralService {
	return &ReferralService{Coupons: coupons, Users: users, now: time.Now}
}

// last4 takes the tail of a referral code, hyphens stripped.
func last4(code string) string {
	s := strings.ToUpper(strings.ReplaceAll(code, "-", ""))
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}

// IssueRewardPair creates and stores the welcome/thanks coupons for a
// completed referral and records the new user on the referrer's list.
func (s *ReferralService) IssueRewardPair(referrer, newUser *domain.User) (welcome, thanks *domain.Coupon, err error) {
	now := s.now()
	salt := fmt.Sprintf("%03d", now.UnixMilli()%1000)

	welcome = &domain.Coupon{
		ID:           uuid.NewString(),
		Code:         fmt.Sprintf("WELCOME-%s-%s", last4(newUser.ReferralCode), salt),
		DiscountType: domain.DiscountPercentage,
		Value:        decimal.NewFromInt(15),
		ExpiryDate:   now.AddDate(0, 0, 30),
		MinPurchase:  decimal.NewFromInt(2000),
		IsActive:     true,
		OwnerID:      newUser.ID,
	}
	thanks = &domain.Coupon{
		ID:           uuid.NewString(),
		Code:         fmt.Sprintf("THANKS-%s-%s", last4(referrer.ReferralCode), salt),
		DiscountType: domain.DiscountFixed,
		Value:        decimal.NewFromInt(1000),
		ExpiryDate:   now.AddDate(0, 0, 60),
		MinPurchase:  decimal.NewFromInt(5000),
		IsActive:     true,
		OwnerID:      referrer.ID,
	}

	if err := s.Coupons.InsertPair(welcome, thanks); err != nil {
		return nil, nil, err
	}
	if err := s.Users.AppendReferredUser(referrer.ID, newUser.ID); err != nil {
		return nil, nil, err
	}
	return welcome, thanks, nil
}

// RewardsFor lists the coupons a user earned through referrals.
func (s *ReferralService) RewardsFor(userID string) ([]*domain.Coupon, error) {
	return s.Coupons.ListByOwner(userID)
}
