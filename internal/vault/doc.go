// Package vault handles the Obsidian side of a synced vault: recognizing a
// vault directory, the .gitignore that keeps per-device state out of git,
// and the obsidian-git plugin settings.
package vault
