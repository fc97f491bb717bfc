// Package setting loads the observability settings document.
//
// The document is JSON (observability.json by default) with the sections
// ApplicationName, AllowedIPs, HealthCheck, Metrics, TraceSetting and the
// optional Logging and Secrets sections. Keys match case-insensitively and
// any scalar may be overridden from the environment with the HEALTHOPS_
// prefix, e.g. HEALTHOPS_APPLICATIONNAME.
//
// A missing or unreadable document disables observability rather than
// stopping the host service; Load reports why through its error.
package setting
