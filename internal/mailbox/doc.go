// Package mailbox provides disposable-mailbox provisioning behind a single
// provider interface. Two schemes are supported: an open relay that hands
// out accounts with bearer tokens (mail.tm style), and a fixed custom
// domain where addresses are pure convention (1secmail style). The provider
// is chosen by configuration.
package mailbox
