// Package templates holds the HTML fragments returned by the async endpoints,
// written as templ components. Text is escaped; widget content is the only
// trusted HTML passed through verbatim.
package templates
