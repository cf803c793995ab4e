// Package guard decides whether a route may render for the current
// session. Decisions are pure values computed from a session snapshot;
// carrying them out (rendering, redirecting) is the caller's job, which
// keeps the rules trivially testable.
package guard

import (
	"github.com/infrasync/infrasync-go/svc/session"
)

// Routes the guards redirect between. The landing page doubles as the
// anonymous-visitor destination; the onboarding flow is reachable by
// any authenticated user, so it carries no guard of its own.
const (
	LandingPath    = "/"
	DashboardPath  = "/dashboard"
	OnboardingPath = "/onboarding"
)

// Action is what the caller should do with the route.
type Action string

const (
	// ActionAllow renders the route.
	ActionAllow Action = "allow"
	// ActionWait renders a loading placeholder; the session is still
	// resolving and no routing decision can be made yet.
	ActionWait Action = "wait"
	// ActionRedirect sends the user to Decision.Target instead.
	ActionRedirect Action = "redirect"
)

// Decision is a guard's verdict for one route evaluation.
type Decision struct {
	Action Action
	// Target is the redirect destination; set only for ActionRedirect.
	Target string
}

// Allow reports whether the route may render.
func (d Decision) Allow() bool { return d.Action == ActionAllow }

func allow() Decision             { return Decision{Action: ActionAllow} }
func wait() Decision              { return Decision{Action: ActionWait} }
func redirect(to string) Decision { return Decision{Action: ActionRedirect, Target: to} }

// Private guards routes that require an authenticated, onboarded user.
// Anonymous visitors land on the landing page; users still needing an
// organization are detoured to onboarding.
func Private(s session.Session) Decision {
	if pending(s) {
		return wait()
	}
	if !s.Authenticated() {
		return redirect(LandingPath)
	}
	if s.NeedsOrgSetup {
		return redirect(OnboardingPath)
	}
	return allow()
}

// Public guards routes meant for anonymous visitors, like the landing
// page. An authenticated user is sent into the application instead,
// to onboarding first when their account still needs an organization.
func Public(s session.Session) Decision {
	if pending(s) {
		return wait()
	}
	if s.Authenticated() {
		if s.NeedsOrgSetup {
			return redirect(OnboardingPath)
		}
		return redirect(DashboardPath)
	}
	return allow()
}

// pending reports whether the session has no resolved answer yet. A
// failed resolution is not pending: the user is treated as anonymous
// rather than kept on a spinner forever.
func pending(s session.Session) bool {
	return s.Loading || s.Status == session.StatusUninitialized || s.Status == session.StatusResolving
}
