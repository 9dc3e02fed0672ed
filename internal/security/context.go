package security

import (
	"errors"
	"fmt"

	"github.com/gosnmp/gosnmp"
)

// DefaultCommunity is the v2c community used when none is configured.
const DefaultCommunity = "admin"

// Validation errors for USM contexts.
var (
	// ErrUserRequired is returned when an SNMPv3 context has no user name.
	ErrUserRequired = errors.New("SNMPv3 requires --user")
	// ErrAuthKeyRequired is returned when the security level needs an auth key.
	ErrAuthKeyRequired = errors.New("auth key is required: set --auth-key for authNoPriv and authPriv")
	// ErrPrivKeyRequired is returned when authPriv is requested without a privacy key.
	ErrPrivKeyRequired = errors.New("privacy key is required: set --priv-key for authPriv")
	// ErrPrivProtocolRequired is returned when authPriv is requested with privacy protocol NONE.
	ErrPrivProtocolRequired = errors.New("authPriv requires --priv-proto other than NONE (e.g. AES, AES128, AES256, DES)")
)

// Context is an immutable, validated SNMP security configuration. It is a
// tagged variant: a v2c context carries only a community string, a v3 context
// carries a USM user plus the credentials its security level demands.
//
// A Context never fails after construction; everything a transport client
// needs is checked up front.
type Context struct {
	version   Version
	community string

	user      string
	level     Level
	authProto AuthProtocol
	authKey   string
	privProto PrivProtocol
	privKey   string
}

// NewCommunity returns a v2c context with the given community string.
// An empty community is technically valid wire-wise and is not rejected.
func NewCommunity(community string) Context {
	return Context{
		version:   Version2c,
		community: community,
	}
}

// NewUSM builds a v3 USM context for the given security level.
//
// Validation is the whole point: noAuthNoPriv needs only a user; authNoPriv
// additionally needs a non-empty auth key; authPriv needs auth and privacy
// keys and a privacy protocol other than NONE. Credentials that the level
// does not use are discarded so they can never leak into a weaker session.
// An auth protocol of NONE passes validation even for authNoPriv; the
// transport rejects that combination at session setup.
func NewUSM(user string, level Level, authProto AuthProtocol, authKey string, privProto PrivProtocol, privKey string) (Context, error) {
	if user == "" {
		return Context{}, ErrUserRequired
	}
	if _, err := ParseLevel(string(level)); err != nil {
		return Context{}, err
	}

	ctx := Context{
		version:   Version3,
		user:      user,
		level:     level,
		authProto: AuthNone,
		privProto: PrivNone,
	}

	switch level {
	case NoAuthNoPriv:
		return ctx, nil

	case AuthNoPriv:
		if authKey == "" {
			return Context{}, fmt.Errorf("SNMPv3 %s: %w", level, ErrAuthKeyRequired)
		}
		ctx.authProto = authProto
		ctx.authKey = authKey
		return ctx, nil

	default: // AuthPriv
		if authKey == "" {
			return Context{}, fmt.Errorf("SNMPv3 %s: %w", level, ErrAuthKeyRequired)
		}
		if privKey == "" {
			return Context{}, fmt.Errorf("SNMPv3 %s: %w", level, ErrPrivKeyRequired)
		}
		if privProto == PrivNone || privProto == "" {
			return Context{}, fmt.Errorf("SNMPv3 %s: %w", level, ErrPrivProtocolRequired)
		}
		ctx.authProto = authProto
		ctx.authKey = authKey
		ctx.privProto = privProto
		ctx.privKey = privKey
		return ctx, nil
	}
}

// Version returns the SNMP version the context authenticates for.
func (c Context) Version() Version {
	return c.version
}

// IsV3 reports whether this is a USM (SNMPv3) context.
func (c Context) IsV3() bool {
	return c.version == Version3
}

// User returns the USM user name. Empty for v2c contexts.
func (c Context) User() string {
	return c.user
}

// SecurityLevel returns the USM security level. Empty for v2c contexts.
func (c Context) SecurityLevel() Level {
	return c.level
}

// String describes the context without exposing any secret material, so it
// is safe to log.
func (c Context) String() string {
	if c.IsV3() {
		return fmt.Sprintf("v3 %s user=%s auth=%s priv=%s", c.level, c.user, c.authProto, c.privProto)
	}
	return "v2c community auth"
}

// Apply configures a gosnmp client for this context. The client receives a
// fresh UsmSecurityParameters value each time: gosnmp mutates the parameters
// during engine discovery, so sharing one instance across clients would race.
func (c Context) Apply(client *gosnmp.GoSNMP) {
	switch c.version {
	case Version3:
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = c.level.msgFlags()
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 c.user,
			AuthenticationProtocol:   c.authProto.algorithm(),
			AuthenticationPassphrase: c.authKey,
			PrivacyProtocol:          c.privProto.algorithm(),
			PrivacyPassphrase:        c.privKey,
		}
	default:
		client.Version = gosnmp.Version2c
		client.Community = c.community
	}
}
