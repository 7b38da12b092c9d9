// SPDX-License-Identifier: MIT

package tntp

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/odsynth/internal/logging"
)

const linkTokens = 11 // ten fields and the closing ';'

// Link is one directed arc of a TNTP network file.
type Link struct {
	Init, Term   int
	Capacity     float64
	Length       float64
	FreeFlowTime float64
	B            float64
	Power        float64
	Speed        float64
	Toll         float64
	Type         int
}

// Network is a parsed TNTP network file. Zones are the nodes 1..NumZones.
type Network struct {
	Metadata      Metadata
	NumZones      int
	NumNodes      int
	FirstThruNode int
	Links         []Link
}

// Capacities maps "(i,j)" link keys to capacity, the key format used by
// solver link-flow logs.
func (n *Network) Capacities() map[string]float64 {
	out := make(map[string]float64, len(n.Links))
	for _, l := range n.Links {
		out[LinkKey(l.Init, l.Term)] = l.Capacity
	}
	return out
}

// LinkKey renders the canonical "(i,j)" link identifier.
func LinkKey(i, j int) string {
	return "(" + strconv.Itoa(i) + "," + strconv.Itoa(j) + ")"
}

// ReadNetwork parses a TNTP network (link) file. Every data row must carry
// at least 11 tokens with ';' as the 11th.
func ReadNetwork(r io.Reader, opts ...Option) (*Network, error) {
	o := newOptions(opts)
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	md := ReadMetadata(lines, o.log)
	net := &Network{Metadata: md}
	for _, t := range []struct {
		tag string
		dst *int
	}{
		{TagNumberOfZones, &net.NumZones},
		{TagNumberOfNodes, &net.NumNodes},
		{TagFirstThruNode, &net.FirstThruNode},
	} {
		v, ok, err := md.Int(t.tag)
		if err != nil {
			return nil, formatErrorf(0, md.Tags[t.tag], "invalid %s", t.tag)
		}
		if ok {
			*t.dst = v
		}
	}
	if !md.HasEnd {
		return net, nil
	}

	for idx := md.EndLine; idx < len(lines); idx++ {
		raw := lines[idx]
		line := stripComment(raw)
		if line == "" {
			continue
		}
		f := strings.Fields(line)
		if len(f) < linkTokens || f[linkTokens-1] != semicolon {
			return nil, formatErrorf(idx+1, raw, "link row needs %d tokens ending with ';'", linkTokens)
		}
		link, err := parseLink(f)
		if err != nil {
			return nil, formatErrorf(idx+1, raw, "%v", err)
		}
		net.Links = append(net.Links, link)
	}

	if want, ok, _ := md.Int(TagNumberOfLinks); ok && want != len(net.Links) {
		o.log.Warn("link count differs from NUMBER OF LINKS",
			logging.Int("declared", want), logging.Int("read", len(net.Links)))
	}
	return net, nil
}

func parseLink(f []string) (Link, error) {
	var (
		l    Link
		errs [10]error
	)
	l.Init, errs[0] = strconv.Atoi(f[0])
	l.Term, errs[1] = strconv.Atoi(f[1])
	l.Capacity, errs[2] = strconv.ParseFloat(f[2], 64)
	l.Length, errs[3] = strconv.ParseFloat(f[3], 64)
	l.FreeFlowTime, errs[4] = strconv.ParseFloat(f[4], 64)
	l.B, errs[5] = strconv.ParseFloat(f[5], 64)
	l.Power, errs[6] = strconv.ParseFloat(f[6], 64)
	l.Speed, errs[7] = strconv.ParseFloat(f[7], 64)
	l.Toll, errs[8] = strconv.ParseFloat(f[8], 64)
	l.Type, errs[9] = strconv.Atoi(f[9])
	for i, err := range errs {
		if err != nil {
			return Link{}, &fieldError{index: i, err: err}
		}
	}
	if l.Init < 1 || l.Term < 1 {
		return Link{}, &fieldError{index: 0, err: strconv.ErrRange}
	}
	return l, nil
}

type fieldError struct {
	index int
	err   error
}

var linkFieldNames = [10]string{"init", "term", "capacity", "length", "free flow time", "b", "power", "speed", "toll", "type"}

func (e *fieldError) Error() string {
	return "link field " + linkFieldNames[e.index] + ": " + e.err.Error()
}

// ReadNetworkFile opens path and delegates to ReadNetwork.
func ReadNetworkFile(path string, opts ...Option) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	net, err := ReadNetwork(f, opts...)
	if err != nil {
		return nil, withPath(err, path)
	}
	return net, nil
}
