// Package security models SNMP authentication as a closed set of validated
// configurations: v2c community auth, and the three SNMPv3 USM security
// levels (noAuthNoPriv, authNoPriv, authPriv).
//
// All validation happens at construction time, before any packet is sent.
// An unknown protocol name, a missing user, or a missing key for the chosen
// level fails immediately with an error naming the bad value and what is
// accepted. A Context that was constructed successfully can always be
// applied to a transport client.
//
// Design decision: protocol names map to gosnmp algorithm constants through
// a fixed table rather than ad-hoc map lookups at send time. A lookup that
// could silently miss at runtime becomes a construction-time error instead.
package security
