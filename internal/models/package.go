package models

import (
	"time"

	"github.com/opencontainers/go-digest"
)

// Package is the summary of an RPM file as read from its header
type Package struct {
	// Core metadata
	Name         string
	Epoch        uint32
	Version      string
	Release      string
	Architecture string
	Summary      string
	Packager     string
	Homepage     string
	License      string
	Group        string
	BuildTime    time.Time
	SourceRPM    string
	Source       bool
	Requires     []string
	Provides     []string

	// Payload description
	PayloadFormat     string
	PayloadCompressor string
	PayloadOffset     int64
	Files             []string

	// File information
	Filename     string
	Size         int64
	Digest       digest.Digest // sha256
	DigestSHA512 digest.Digest
	MD5          string // hex, as yum and older rpm tooling print it
	SHA1         string

	// Header digests and signatures as stored in the signature section
	HeaderSHA1   string
	HeaderSHA256 digest.Digest
	Signatures   []Signature
}

// Signature describes one OpenPGP signature carried in the signature section
type Signature struct {
	Tag       uint32
	Version   int
	KeyID     uint64
	PubKey    string
	Hash      string
	CreatedAt time.Time
}
