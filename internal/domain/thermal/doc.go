// Package thermal holds the data model of the infrared sensor node: the
// 32x24 Frame, its aggregate Stats and the fixed acquisition constants.
package thermal
