package model

import "fmt"

// Kind is the closed set of connection types sshgo can launch.
type Kind string

const (
	KindSSH Kind = "ssh"
	KindRDP Kind = "rdp"
)

// ParseKind normalizes a stored type tag. Unknown or empty tags fall back to
// SSH, which is how the store format has always been read.
func ParseKind(s string) Kind {
	switch s {
	case "rdp", "RDP", "Rdp":
		return KindRDP
	default:
		return KindSSH
	}
}

// DefaultPort returns the conventional port for the kind.
func (k Kind) DefaultPort() int {
	if k == KindRDP {
		return 3389
	}
	return 22
}

// Upper returns the kind tag as displayed in menus and record summaries.
func (k Kind) Upper() string {
	if k == KindRDP {
		return "RDP"
	}
	return "SSH"
}

// ConnectionRecord is one stored connection entry. Name is the unique key
// within the store.
type ConnectionRecord struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Secret      string `json:"secret,omitempty"`
	ExtraParams string `json:"extra_params,omitempty"`
}

// Address returns the user@host:port string used by the menu and the show
// command.
func (r ConnectionRecord) Address() string {
	return fmt.Sprintf("%s@%s:%d", r.Username, r.Host, r.Port)
}

// HasSecret reports whether a credential is stored for the record.
func (r ConnectionRecord) HasSecret() bool {
	return r.Secret != ""
}
