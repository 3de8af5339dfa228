// Package web serves the node over plain HTTP: the heat-map page, the text
// frame and stats endpoints, a JSON snapshot and the alarm hooks.
package web
