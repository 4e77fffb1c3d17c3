// Package production provides production integrations: scenario files and catalogs,
// snapshot publishing and visualization.
package production
