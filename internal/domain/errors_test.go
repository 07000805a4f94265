package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsValidation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", ErrInsufficientFunds, true},
		{"wrapped sentinel", fmt.Errorf("transfer: %w", ErrInsufficientFunds), true},
		{"plain error", errors.New("db down"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		if got := IsValidation(tc.err); got != tc.want {
			t.Fatalf("%s: IsValidation = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidationSentinelsMatchWithErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("redeem %q: %w", "WELCOME", ErrAlreadyRedeemed)
	if !errors.Is(wrapped, ErrAlreadyRedeemed) {
		t.Fatalf("expected wrapped error to match sentinel")
	}
	if errors.Is(wrapped, ErrCodeExhausted) {
		t.Fatalf("did not expect match against a different sentinel")
	}
}

func TestRewardValidate(t *testing.T) {
	cp := 500
	cases := []struct {
		name    string
		reward  Reward
		wantErr bool
	}{
		{"coins", Reward{Kind: RewardCoins, Amount: 100}, false},
		{"draws", Reward{Kind: RewardGachaDraws, Amount: 3}, false},
		{"power", Reward{Kind: RewardPower, PowerID: 7}, false},
		{"power with override", Reward{Kind: RewardPower, PowerID: 7, CPOverride: &cp}, false},
		{"coins zero amount", Reward{Kind: RewardCoins}, true},
		{"power missing id", Reward{Kind: RewardPower}, true},
		{"unknown kind", Reward{Kind: "loot_box", Amount: 1}, true},
	}

	for _, tc := range cases {
		err := tc.reward.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: Validate() = %v; wantErr %v", tc.name, err, tc.wantErr)
		}
		// malformed rewards are terminal rejections, never retried
		if tc.wantErr && !IsValidation(err) {
			t.Fatalf("%s: Validate() = %v; want a validation error", tc.name, err)
		}
	}
}
