// SPDX-License-Identifier: MIT

// Package odsynth synthesizes and perturbs travel-demand (origin–destination)
// matrices stored in the line-oriented TNTP format.
//
// What is odsynth?
//
//	A small toolkit for producing demand scenarios that feed an external
//	traffic-assignment solver:
//		• TNTP codec: read/write demand files with metadata consistency checks
//		• Perturbation: seeded multiplicative jitter on masked OD pairs
//		• Gravity model: doubly-constrained synthesis via iterative proportional fitting
//		• Geography: node coordinates, bounding predicates, central-node selection
//		• Trials: perturb → solve → read link flows → record TSTT
//
// Everything is organized under these packages:
//
//	matrix/            dense float64 storage, masks, validators, Floyd-Warshall
//	tntp/              demand, node, network and parameter file readers/writers
//	geo/               node geography table and bounding predicates
//	perturb/           node-set (OR) and geography (AND) masks, noise engine
//	gravity/           friction unpacking, IPF synthesizer, impedance builder
//	solver/            external solver launcher and link-flow log reader
//	trial/             end-to-end perturbation trials
//	internal/logging/  zap-backed structured logger
//	internal/config/   viper configuration (file + ODSYNTH_* env)
//	internal/ledger/   SQLite trial ledger
//	internal/metrics/  Prometheus collectors and textfile export
//	internal/cli/      cobra commands
//	cmd/odsynth/       command-line entry point
//
// Quick example (3 zones, perturb every pair touching zone 2):
//
//	    1   2   3
//	1   .   x   .
//	2   x   x   x
//	3   .   x   .
//
//	go install github.com/katalvlaran/odsynth/cmd/odsynth@latest
package odsynth
