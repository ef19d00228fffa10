package storage

import "github.com/DeBrosOfficial/pinner/pkg/pinning"

// UploadResponse is the body returned by a successful upload.
type UploadResponse struct {
	Success bool `json:"success"`
	// CID is the final identifier: the replica's when replication succeeded, else the primary's
	CID string `json:"cid"`
	// IPFSCID is the identifier computed by the primary store
	IPFSCID string `json:"ipfsCid"`
	// NFTStorage reports whether replication succeeded
	NFTStorage bool     `json:"nftStorage"`
	Filename   string   `json:"filename"`
	Size       int64    `json:"size"`
	MimeType   string   `json:"mimetype"`
	Gateways   []string `json:"gateways"`
}

// StatusResponse describes a CID and its replication state.
type StatusResponse struct {
	CID string `json:"cid"`
	// Version is the CID version, 0 or 1
	Version uint64 `json:"version"`
	// Codec is the multicodec code of the content, e.g. 0x70 for dag-pb
	Codec uint64 `json:"codec"`
	// Hash is the multihash function name, e.g. "sha2-256"
	Hash string `json:"hash"`
	// NFTStorage is nil when replication is disabled or the lookup failed
	NFTStorage *pinning.Status `json:"nftStorage"`
}
