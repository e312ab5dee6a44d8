package domain

import (
	"errors"
	"fmt"
	"time"
)

// CheckKind names one of the supported probe strategies.
type CheckKind string

const (
	KindPing    CheckKind = "ping"
	KindPort    CheckKind = "port"
	KindHTTP    CheckKind = "http"
	KindKeyword CheckKind = "keyword"
)

// Check is the closed set of probe strategies. Only the types in this file
// implement it.
type Check interface {
	Kind() CheckKind
	isCheck()
}

type PingCheck struct{}

type PortCheck struct {
	Port int `json:"port"`
}

type HTTPCheck struct{}

// KeywordCheck is an HTTP check that also looks for Keyword in the body.
// The target is Up iff (keyword found) == ExpectPresent.
type KeywordCheck struct {
	Keyword       string `json:"keyword"`
	ExpectPresent bool   `json:"expect_present"`
}

func (PingCheck) Kind() CheckKind    { return KindPing }
func (PortCheck) Kind() CheckKind    { return KindPort }
func (HTTPCheck) Kind() CheckKind    { return KindHTTP }
func (KeywordCheck) Kind() CheckKind { return KindKeyword }

func (PingCheck) isCheck()    {}
func (PortCheck) isCheck()    {}
func (HTTPCheck) isCheck()    {}
func (KeywordCheck) isCheck() {}

// TargetSpec is one monitored endpoint. Description is its identity.
type TargetSpec struct {
	Description string `json:"description"`
	Host        string `json:"host"`
	Check       Check  `json:"-"`
}

func (t TargetSpec) Kind() CheckKind {
	if t.Check == nil {
		return ""
	}
	return t.Check.Kind()
}

func (t TargetSpec) Validate() error {
	if t.Description == "" {
		return errors.New("description is required")
	}
	if t.Host == "" {
		return fmt.Errorf("%s: target is required", t.Description)
	}
	switch c := t.Check.(type) {
	case PingCheck, HTTPCheck:
		return nil
	case PortCheck:
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("%s: port %d out of range", t.Description, c.Port)
		}
		return nil
	case KeywordCheck:
		if c.Keyword == "" {
			return fmt.Errorf("%s: keyword is required", t.Description)
		}
		return nil
	case nil:
		return fmt.Errorf("%s: check type is required", t.Description)
	default:
		return fmt.Errorf("%s: unsupported check %T", t.Description, c)
	}
}

// Settings are fixed for the lifetime of the process.
type Settings struct {
	NotifyChatID         string
	NotifyToken          string
	FailureThreshold     int
	PollInterval         time.Duration
	StatusReportInterval time.Duration
	ReportOnlyIfDown     bool
}

func (s Settings) Validate() error {
	if s.FailureThreshold < 1 {
		return fmt.Errorf("failure threshold must be >= 1, got %d", s.FailureThreshold)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0, got %s", s.PollInterval)
	}
	if s.StatusReportInterval < 0 {
		return fmt.Errorf("status report interval must be >= 0, got %s", s.StatusReportInterval)
	}
	return nil
}
