// Package runtime provides the execution context for vaultsync commands.
//
// It bundles what every action needs: the sync engine, the logger, the loaded
// configuration and the resolved vault path.
package runtime
