package prompt

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/marmos91/smbenum/pkg/auth"
)

// Password prompts for a password input with masking.
func Password(label string) (string, error) {
	return run(promptui.Prompt{
		Label: label,
		Mask:  '*',
	})
}

// PasswordFor asks for the password of identity on host.
func PasswordFor(identity, host string) (string, error) {
	label := fmt.Sprintf("Password for %s", identity)
	if host != "" {
		label += "@" + host
	}
	return Password(label)
}

// Credentials asks for a workgroup, user name and password, offering the
// values of defaults. An empty user name yields anonymous credentials
// without asking for a password.
func Credentials(defaults auth.Credentials) (auth.Credentials, error) {
	var creds auth.Credentials
	var err error

	if creds.Workgroup, err = InputOptional("Workgroup", defaults.Workgroup); err != nil {
		return auth.Credentials{}, err
	}
	if creds.Username, err = InputOptional("Username", defaults.Username); err != nil {
		return auth.Credentials{}, err
	}
	if creds.Username == "" {
		return auth.Credentials{}, nil
	}
	if creds.Password, err = PasswordFor(creds.Identity(), ""); err != nil {
		return auth.Credentials{}, err
	}
	return creds, nil
}
