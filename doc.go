// Package secretservice provides a Go client for the freedesktop.org
// Secret Service API, the desktop standard for secret storage
// implemented by GNOME Keyring and KWallet and reached over the D-Bus
// session bus.
//
// Connecting negotiates an encryption session with the daemon: either
// "plain" transfer or Diffie-Hellman key agreement with AES-128-CBC
// secret encryption.
//
// Basic usage:
//
//	ss, err := secretservice.Connect(ctx, secretservice.DH)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ss.Close()
//
//	collection, err := ss.DefaultCollection(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	item, err := collection.CreateItem(ctx, "my token",
//	    map[string]string{"service": "example"},
//	    []byte("hunter2"), false, "text/plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	secret, err := item.GetSecret(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s\n", secret)
//
// Privileged operations (unlock, delete, create) may require the user
// to confirm through a prompt shown by the daemon. By default the
// client waits indefinitely for the user; use WithPromptTimeout to
// bound the wait or WithoutPrompting to dismiss prompts outright.
package secretservice
