// Package inventory discovers console servers on the management network and
// collects the device state behind each of their serial lines.
//
// Discovery probes the addresses in the configured ranges for the console
// servers' chassis-size ports: a host answering on 2017 is a 32-line server,
// one answering only on 2016 carries 16 lines. Collection then opens each
// line's telnet or SSH port, logs in to the attached device's menu CLI, and
// parses the product name and management address out of the menu screens.
//
// Design decision: Discovery fans out across hosts while collection walks a
// console's lines serially. The two differ because a discovery probe is a
// single TCP connect, but a line dialog holds the console server's CPU for
// several seconds, and the servers handle one slow dialog at a time much
// better than thirty-two.
package inventory
