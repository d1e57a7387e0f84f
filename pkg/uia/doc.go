// Package uia captures Windows UI Automation events through a substitutable
// event source: the real COM binding on windows builds, or a synthetic
// event-injecting source for automated tests and non-windows development.
// Element property reads never panic and never block; failures surface as
// typed PropError values that call sites replace with defaults.
package uia
