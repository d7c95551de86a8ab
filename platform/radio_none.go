//go:build (badger2040 || badger2040_w) && !(ninafw || comboat_fw)

package platform

import "badgecode-go/services/netsync"

// openRadio reports no radio: the on-board CYW43439 has no netlink driver in
// tinygo.org/x/drivers, so sync is disabled unless a supported co-processor
// build tag is set.
func openRadio() netsync.Radio { return nil }
