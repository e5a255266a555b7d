// Package lwdiscovery advertises a running server over mDNS so LWM2M
// clients and operator tooling on the same network can find it without a
// pre-shared address. It advertises a single service type, unlike
// multi-service commissioning advertisers that juggle separate
// commissionable/operational/commissioner zones at once.
package lwdiscovery
