package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// Protocol lookup errors.
var (
	// ErrUnknownAuthProtocol is returned for an auth protocol name outside the supported set.
	ErrUnknownAuthProtocol = errors.New("unsupported auth protocol")
	// ErrUnknownPrivProtocol is returned for a privacy protocol name outside the supported set.
	ErrUnknownPrivProtocol = errors.New("unsupported privacy protocol")
	// ErrUnknownLevel is returned for a security level name outside the supported set.
	ErrUnknownLevel = errors.New("unsupported security level")
	// ErrUnknownVersion is returned for an SNMP version other than 2c or 3.
	ErrUnknownVersion = errors.New("unsupported SNMP version")
)

// Version identifies the SNMP protocol version of a scan.
type Version string

const (
	// Version2c is SNMP v2c community-based authentication.
	Version2c Version = "2c"
	// Version3 is SNMP v3 with the User-based Security Model.
	Version3 Version = "3"
)

// ParseVersion validates an SNMP version name. Only "2c" and "3" are supported.
func ParseVersion(name string) (Version, error) {
	switch Version(name) {
	case Version2c:
		return Version2c, nil
	case Version3:
		return Version3, nil
	default:
		return "", fmt.Errorf("%w %q: use one of: 2c, 3", ErrUnknownVersion, name)
	}
}

// Level is an SNMPv3 USM security level.
type Level string

const (
	// NoAuthNoPriv performs no authentication and no encryption.
	NoAuthNoPriv Level = "noAuthNoPriv"
	// AuthNoPriv authenticates messages but does not encrypt them.
	AuthNoPriv Level = "authNoPriv"
	// AuthPriv authenticates and encrypts messages.
	AuthPriv Level = "authPriv"
)

// LevelNames returns the supported level names in increasing-security order.
func LevelNames() []string {
	return []string{string(NoAuthNoPriv), string(AuthNoPriv), string(AuthPriv)}
}

// ParseLevel validates a security level name. Lookup is case-sensitive,
// matching the conventional mixed-case spelling of the levels.
func ParseLevel(name string) (Level, error) {
	switch Level(name) {
	case NoAuthNoPriv, AuthNoPriv, AuthPriv:
		return Level(name), nil
	default:
		return "", fmt.Errorf("%w %q: use one of: %s",
			ErrUnknownLevel, name, strings.Join(LevelNames(), ", "))
	}
}

// msgFlags maps the level to the gosnmp message flags.
func (l Level) msgFlags() gosnmp.SnmpV3MsgFlags {
	switch l {
	case AuthNoPriv:
		return gosnmp.AuthNoPriv
	case AuthPriv:
		return gosnmp.AuthPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

// AuthProtocol identifies a USM authentication algorithm by its canonical
// upper-case name.
type AuthProtocol string

// Supported authentication protocols.
const (
	AuthNone   AuthProtocol = "NONE"
	AuthMD5    AuthProtocol = "MD5"
	AuthSHA    AuthProtocol = "SHA"
	AuthSHA224 AuthProtocol = "SHA224"
	AuthSHA256 AuthProtocol = "SHA256"
	AuthSHA384 AuthProtocol = "SHA384"
	AuthSHA512 AuthProtocol = "SHA512"
)

// authProtocolTable is the closed mapping from name to gosnmp algorithm.
// Declaration order is the order shown in error messages and help text.
var authProtocolTable = []struct {
	name AuthProtocol
	algo gosnmp.SnmpV3AuthProtocol
}{
	{AuthNone, gosnmp.NoAuth},
	{AuthMD5, gosnmp.MD5},
	{AuthSHA, gosnmp.SHA},
	{AuthSHA224, gosnmp.SHA224},
	{AuthSHA256, gosnmp.SHA256},
	{AuthSHA384, gosnmp.SHA384},
	{AuthSHA512, gosnmp.SHA512},
}

// AuthProtocolNames returns the supported auth protocol names in table order.
func AuthProtocolNames() []string {
	names := make([]string, 0, len(authProtocolTable))
	for _, entry := range authProtocolTable {
		names = append(names, string(entry.name))
	}
	return names
}

// ParseAuthProtocol validates an auth protocol name. The empty string means
// NONE; lookup is case-insensitive.
func ParseAuthProtocol(name string) (AuthProtocol, error) {
	if name == "" {
		return AuthNone, nil
	}
	upper := AuthProtocol(strings.ToUpper(name))
	for _, entry := range authProtocolTable {
		if entry.name == upper {
			return entry.name, nil
		}
	}
	return "", fmt.Errorf("%w %q: use one of: %s",
		ErrUnknownAuthProtocol, name, strings.Join(AuthProtocolNames(), ", "))
}

// algorithm returns the gosnmp constant for the protocol. Unknown values
// cannot occur for protocols built through ParseAuthProtocol; anything else
// degrades to NoAuth.
func (p AuthProtocol) algorithm() gosnmp.SnmpV3AuthProtocol {
	for _, entry := range authProtocolTable {
		if entry.name == p {
			return entry.algo
		}
	}
	return gosnmp.NoAuth
}

// PrivProtocol identifies a USM privacy (encryption) algorithm by its
// canonical upper-case name.
type PrivProtocol string

// Supported privacy protocols. AES is the common shorthand for AES128;
// AES192C and AES256C are the Reeder key-localization variants many vendors
// ship as "AES192"/"AES256".
const (
	PrivNone    PrivProtocol = "NONE"
	PrivDES     PrivProtocol = "DES"
	PrivAES     PrivProtocol = "AES"
	PrivAES128  PrivProtocol = "AES128"
	PrivAES192  PrivProtocol = "AES192"
	PrivAES256  PrivProtocol = "AES256"
	PrivAES192C PrivProtocol = "AES192C"
	PrivAES256C PrivProtocol = "AES256C"
)

// privProtocolTable is the closed mapping from name to gosnmp algorithm.
var privProtocolTable = []struct {
	name PrivProtocol
	algo gosnmp.SnmpV3PrivProtocol
}{
	{PrivNone, gosnmp.NoPriv},
	{PrivDES, gosnmp.DES},
	{PrivAES, gosnmp.AES},
	{PrivAES128, gosnmp.AES},
	{PrivAES192, gosnmp.AES192},
	{PrivAES256, gosnmp.AES256},
	{PrivAES192C, gosnmp.AES192C},
	{PrivAES256C, gosnmp.AES256C},
}

// PrivProtocolNames returns the supported privacy protocol names in table order.
func PrivProtocolNames() []string {
	names := make([]string, 0, len(privProtocolTable))
	for _, entry := range privProtocolTable {
		names = append(names, string(entry.name))
	}
	return names
}

// ParsePrivProtocol validates a privacy protocol name. The empty string
// means NONE; lookup is case-insensitive.
func ParsePrivProtocol(name string) (PrivProtocol, error) {
	if name == "" {
		return PrivNone, nil
	}
	upper := PrivProtocol(strings.ToUpper(name))
	for _, entry := range privProtocolTable {
		if entry.name == upper {
			return entry.name, nil
		}
	}
	return "", fmt.Errorf("%w %q: use one of: %s",
		ErrUnknownPrivProtocol, name, strings.Join(PrivProtocolNames(), ", "))
}

// algorithm returns the gosnmp constant for the protocol.
func (p PrivProtocol) algorithm() gosnmp.SnmpV3PrivProtocol {
	for _, entry := range privProtocolTable {
		if entry.name == p {
			return entry.algo
		}
	}
	return gosnmp.NoPriv
}
