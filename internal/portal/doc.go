// Package portal serves scan results over a small JSON API.
//
// The portal sits in front of the subnet scanner: it caches the result of
// each network's last sweep and only rescans when the cache has expired or
// a refresh is forced. One scan runs at a time process-wide; while it runs,
// stale results keep being served rather than queueing more SNMP traffic
// onto the wire.
//
// Every response uses the envelope {"success": ..., "message": ...,
// "data": ...}, with errors reported through the message field.
package portal
