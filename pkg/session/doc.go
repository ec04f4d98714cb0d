// Package session obtains and persists Cirrus session credentials.
//
// A session is four opaque tokens embedded in the web player page
// (customer id, ADP token, device id, device type) plus the cookies the
// browser accumulated while signing in. Bootstrapper performs the emulated
// browser login; Store implementations persist the result.
//
// # Basic Usage
//
//	b := session.NewBootstrapper(session.DefaultBootstrapConfig())
//	creds, err := b.Login(ctx, "user@example.com", "secret")
//	if errors.Is(err, session.ErrAuthenticationFailed) {
//		// wrong credentials, form changed or network trouble; retry later
//	}
//
//	store := session.NewFileStore(session.DefaultPath())
//	if err := store.Save(ctx, creds); err != nil {
//		return err
//	}
//
// # Stores
//
// FileStore keeps a small JSON blob on disk (0600). RedisStore keeps the
// same blob under a per-account key so several worker processes can share
// one login. Both return ErrNoCredentials when nothing has been saved.
package session
