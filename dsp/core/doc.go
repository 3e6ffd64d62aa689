// Package core provides shared configuration and small numeric helpers used
// across the processing and measurement packages.
package core
