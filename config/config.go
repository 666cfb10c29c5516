// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Security parameters are read once at module initialization and are
// fixed for the module's lifetime.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrInvalidPeriod    = errors.New("security period must be positive")
	ErrInvalidWindow    = errors.New("security window must be positive")
	ErrInvalidLock      = errors.New("lock period must be positive")
	ErrInvalidThreshold = errors.New("required approvals must be at least one")
)

// Params holds the time-lock and approval parameters of the security
// core.
type Params struct {
	// SecurityPeriod is the delay before a requested guardian or
	// trusted-recipient change becomes confirmable.
	SecurityPeriod time.Duration `mapstructure:"security_period"`

	// SecurityWindow is the interval after the security period during
	// which confirmation must occur before the request goes stale.
	SecurityWindow time.Duration `mapstructure:"security_window"`

	// LockPeriod is how long a guardian-initiated lock lasts before it
	// expires on its own.
	LockPeriod time.Duration `mapstructure:"lock_period"`

	// RequiredApprovals is the signature threshold for relayed
	// execution, counted over the owner and resolved guardians.
	RequiredApprovals int `mapstructure:"required_approvals"`
}

// Default returns the parameters used when nothing is configured.
func Default() Params {
	return Params{
		SecurityPeriod:    24 * time.Hour,
		SecurityWindow:    24 * time.Hour,
		LockPeriod:        120 * time.Hour,
		RequiredApprovals: 1,
	}
}

// Validate checks the parameters for internal consistency.
func (p Params) Validate() error {
	if p.SecurityPeriod <= 0 {
		return ErrInvalidPeriod
	}
	if p.SecurityWindow <= 0 {
		return ErrInvalidWindow
	}
	if p.LockPeriod <= 0 {
		return ErrInvalidLock
	}
	if p.RequiredApprovals < 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// SetupViper configures a viper instance with the WALLET_ environment
// prefix and the default parameter values.
func SetupViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WALLET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	def := Default()
	v.SetDefault("security_period", def.SecurityPeriod)
	v.SetDefault("security_window", def.SecurityWindow)
	v.SetDefault("lock_period", def.LockPeriod)
	v.SetDefault("required_approvals", def.RequiredApprovals)
	return v
}

// Load reads and validates parameters from a viper instance.
func Load(v *viper.Viper) (Params, error) {
	p := Params{
		SecurityPeriod:    v.GetDuration("security_period"),
		SecurityWindow:    v.GetDuration("security_window"),
		LockPeriod:        v.GetDuration("lock_period"),
		RequiredApprovals: v.GetInt("required_approvals"),
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("invalid security parameters: %w", err)
	}
	return p, nil
}
