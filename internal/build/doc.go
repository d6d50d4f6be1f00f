// Package build is the devpp build orchestrator. It turns a devcontainer
// configuration and its resolved local features into a multi-stage
// Containerfile.
//
// The generated document has three parts:
//
//	FROM <base> AS devpp-base                    base stage
//	FROM devpp-base AS devpp-feature-<id>        one stage per feature, in
//	  <dependency blocks>                        dependency order
//	  ARG/ENV, RUN <feature>/install.sh
//	FROM devpp-base AS <target>                  final stage copying every
//	  <dependency blocks>                        feature's /opt/<id>
//
// A dependency block is a marker comment, the dependency's containerEnv
// and a COPY of its /opt/<id> folder from its stage. Feature order comes
// from internal/toposort over the installsAfter edges and is used as-is.
// Given the same inputs, the output is byte-for-byte identical.
package build
