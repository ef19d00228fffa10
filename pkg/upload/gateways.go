package upload

// DefaultReplicaBase is the pinning service's public gateway.
const DefaultReplicaBase = "https://nftstorage.link/ipfs/"

// GatewaySet derives the public URLs a CID can be fetched from.
type GatewaySet struct {
	// Bases are prefixes such as "https://ipfs.io/ipfs/"; each yields base+cid, in order.
	Bases []string
	// ReplicaBase is the pinning service's own gateway, appended only for replicated uploads.
	// Empty means DefaultReplicaBase.
	ReplicaBase string
}

// URLs returns one URL per base, plus the replica gateway last when replicated is true.
// A replicated CID always yields len(Bases)+1 URLs.
func (g GatewaySet) URLs(cid string, replicated bool) []string {
	urls := make([]string, 0, len(g.Bases)+1)
	for _, base := range g.Bases {
		urls = append(urls, base+cid)
	}
	if replicated {
		replica := g.ReplicaBase
		if replica == "" {
			replica = DefaultReplicaBase
		}
		urls = append(urls, replica+cid)
	}
	return urls
}
