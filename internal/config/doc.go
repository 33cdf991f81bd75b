// Package config persists user preferences for dalimon.
//
// Settings live in a YAML file under the platform config directory
// (XDG_CONFIG_HOME/dalimon on Linux). They hold defaults the command
// line would otherwise repeat every run: which transport to use, the
// serial port and baud rate, USB bridge identifiers, and display
// preferences. Command-line flags always win over the file.
//
// Saves are atomic (write to a temp file, then rename) so a crash
// never leaves a truncated config behind.
package config
