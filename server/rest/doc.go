// Package rest is the HTTP/JSON facade of nanoKV.
//
// Routes:
//
//	POST   /set          {"key": "...", "value": "<base64>"} -> {"success": true}
//	GET    /get/{key}    {"value": "<base64>"}, 404 if the key is absent
//	DELETE /delete/{key} {"success": true}
//	GET    /flush        {"success": true}
//	GET    /keys         ["key", ...]
//	GET    /metrics      operation counters in Prometheus text format
//
// A value that is not valid base64 is answered with
// {"success": false, "message": "Invalid Base64"}.
package rest
