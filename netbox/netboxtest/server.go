// Package netboxtest provides an in-memory NetBox API for tests.
//
// Objects are returned with the read-only fields NetBox always includes
// (URLs, counts, nested references), so the API client can decode them.
package netboxtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Collection paths.
const (
	Manufacturers  = "/api/dcim/manufacturers/"
	Sites          = "/api/dcim/sites/"
	DeviceRoles    = "/api/dcim/device-roles/"
	DeviceTypes    = "/api/dcim/device-types/"
	Devices        = "/api/dcim/devices/"
	VirtualChassis = "/api/dcim/virtual-chassis/"
	Interfaces     = "/api/dcim/interfaces/"
	VLANs          = "/api/ipam/vlans/"
	Prefixes       = "/api/ipam/prefixes/"
	IPAddresses    = "/api/ipam/ip-addresses/"
)

// references maps writable reference fields to the collection they point to.
var references = map[string]string{
	"manufacturer":    Manufacturers,
	"site":            Sites,
	"role":            DeviceRoles,
	"device_type":     DeviceTypes,
	"device":          Devices,
	"master":          Devices,
	"virtual_chassis": VirtualChassis,
	"vlan":            VLANs,
	"primary_ip4":     IPAddresses,
}

// Read-only counters, all zero. Collections without them keep them as extra fields.
var counters = []string{
	"circuit_count", "device_count", "prefix_count", "rack_count", "virtualmachine_count", "vlan_count",
	"devicetype_count", "inventoryitem_count", "platform_count", "member_count",
	"console_port_count", "console_server_port_count", "power_port_count", "power_outlet_count",
	"interface_count", "front_port_count", "rear_port_count", "device_bay_count", "module_bay_count",
	"inventory_item_count", "console_port_template_count", "console_server_port_template_count",
	"power_port_template_count", "power_outlet_template_count", "interface_template_count",
	"front_port_template_count", "rear_port_template_count", "device_bay_template_count",
	"module_bay_template_count", "inventory_item_template_count",
	"count_ipaddresses", "count_fhrp_groups", "children", "_depth",
}

// Request - A write received by the server.
type Request struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// Server - Fake NetBox. Lists page by limit and offset, writes get increasing IDs.
type Server struct {
	*httptest.Server
	Token string
	// NextBase replaces the server URL in next links, like a proxy rewriting the host
	NextBase string

	mutex    sync.Mutex
	nextID   int
	objects  map[string]map[int]map[string]interface{}
	requests []Request
	failures map[string]int
}

// NewServer - Start a server. Created objects get IDs after firstID.
func NewServer(token string, firstID int) *Server {
	server := &Server{
		Token:    token,
		nextID:   firstID,
		objects:  make(map[string]map[int]map[string]interface{}),
		failures: make(map[string]int),
	}
	server.Server = httptest.NewServer(server)
	return server
}

// Seed - Add an existing object to a collection.
func (server *Server) Seed(collection string, id int, fields map[string]interface{}) {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.store(collection, id, fields)
}

// FailWrites - Answer writes to the collection with the status code.
func (server *Server) FailWrites(collection string, statusCode int) {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	server.failures[collection] = statusCode
}

// Requests - The writes received so far, in order.
func (server *Server) Requests() []Request {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return append([]Request(nil), server.requests...)
}

// Writes - The writes received so far as "METHOD path".
func (server *Server) Writes() []string {
	requests := server.Requests()
	writes := make([]string, 0, len(requests))
	for _, request := range requests {
		writes = append(writes, request.Method+" "+request.Path)
	}
	return writes
}

// ServeHTTP implements http.Handler.
func (server *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if server.Token != "" && r.Header.Get("Authorization") != "Token "+server.Token {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"detail": "Invalid token"})
		return
	}
	collection, id := splitPath(r.URL.Path)
	if collection == "" {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Not found."})
		return
	}

	server.mutex.Lock()
	defer server.mutex.Unlock()

	if r.Method == http.MethodGet {
		server.list(w, r, collection)
		return
	}

	body := make(map[string]interface{})
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"detail": err.Error()})
		return
	}
	server.requests = append(server.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
	if statusCode, ok := server.failures[collection]; ok {
		writeJSON(w, statusCode, map[string]interface{}{"detail": "Rejected"})
		return
	}

	switch r.Method {
	case http.MethodPost:
		server.nextID++
		server.store(collection, server.nextID, body)
		writeJSON(w, http.StatusCreated, server.render(collection, server.nextID))
	case http.MethodPatch:
		existing, ok := server.objects[collection][id]
		if !ok {
			existing = make(map[string]interface{})
		}
		for key, value := range body {
			existing[key] = value
		}
		server.store(collection, id, existing)
		writeJSON(w, http.StatusOK, server.render(collection, id))
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"detail": "Method not allowed."})
	}
}

func (server *Server) list(w http.ResponseWriter, r *http.Request, collection string) {
	query := r.URL.Query()
	names := query["name"]

	ids := make([]int, 0, len(server.objects[collection]))
	for id, fields := range server.objects[collection] {
		if len(names) > 0 && !contains(names, fmt.Sprint(fields["name"])) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	limit := len(ids)
	if value, err := strconv.Atoi(query.Get("limit")); err == nil && value > 0 {
		limit = value
	}
	offset := 0
	if value, err := strconv.Atoi(query.Get("offset")); err == nil && value >= 0 {
		offset = value
	}

	results := make([]interface{}, 0, limit)
	for index := offset; index < len(ids) && index < offset+limit; index++ {
		results = append(results, server.render(collection, ids[index]))
	}
	var next interface{}
	if offset+limit < len(ids) {
		base := server.URL
		if server.NextBase != "" {
			base = server.NextBase
		}
		next = fmt.Sprintf("%v%v?limit=%d&offset=%d", base, collection, limit, offset+limit)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(ids),
		"next":     next,
		"previous": nil,
		"results":  results,
	})
}

func (server *Server) store(collection string, id int, fields map[string]interface{}) {
	if server.objects[collection] == nil {
		server.objects[collection] = make(map[int]map[string]interface{})
	}
	copied := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	server.objects[collection][id] = copied
}

// render builds the full response object, with references expanded.
func (server *Server) render(collection string, id int) map[string]interface{} {
	object := server.brief(collection, id)
	for _, counter := range counters {
		object[counter] = 0
	}
	object["created"] = nil
	object["last_updated"] = nil
	object["tags"] = []interface{}{}
	object["custom_fields"] = map[string]interface{}{}
	object["l2vpn_termination"] = nil

	switch collection {
	case Devices:
		object["parent_device"] = nil
		object["primary_ip"] = nil
		object["primary_ip4"] = nil
		object["primary_ip6"] = nil
		object["oob_ip"] = nil
		object["config_context"] = map[string]interface{}{}
		object["virtual_chassis"] = nil
		object["vc_position"] = nil
		object["serial"] = ""
	case Interfaces:
		object["type"] = map[string]interface{}{"value": "other", "label": "Other"}
		object["cable"] = nil
		object["cable_end"] = ""
		object["link_peers"] = []interface{}{}
		object["link_peers_type"] = nil
		object["connected_endpoints"] = nil
		object["connected_endpoints_type"] = nil
		object["connected_endpoints_reachable"] = nil
		object["wireless_link"] = nil
		object["mac_addresses"] = []interface{}{}
		object["_occupied"] = false
	case VirtualChassis:
		object["master"] = nil
		object["members"] = []interface{}{}
	case Prefixes, IPAddresses:
		object["family"] = map[string]interface{}{"value": 4, "label": "IPv4"}
		object["nat_outside"] = []interface{}{}
		object["assigned_object"] = nil
		object["vlan"] = nil
	}

	for key, value := range server.objects[collection][id] {
		switch key {
		case "status", "type":
			object[key] = map[string]interface{}{"value": value, "label": label(fmt.Sprint(value))}
		default:
			target, isReference := references[key]
			referenceID, isNumber := asID(value)
			if isReference && isNumber {
				object[key] = server.brief(target, referenceID)
			} else {
				object[key] = value
			}
		}
	}
	return object
}

// brief builds the nested form of an object.
func (server *Server) brief(collection string, id int) map[string]interface{} {
	fields := server.objects[collection][id]
	name := fmt.Sprintf("%v%d", path.Base(collection), id)
	if value, ok := fields["name"].(string); ok {
		name = value
	}
	object := map[string]interface{}{
		"id":          id,
		"url":         fmt.Sprintf("%v%v%d/", server.URL, collection, id),
		"display_url": fmt.Sprintf("%v%v%d/", server.URL, collection, id),
		"display":     name,
		"name":        name,
		"slug":        name,
		"description": "",
	}
	for _, key := range []string{"slug", "model", "vid", "prefix", "address", "color"} {
		if value, ok := fields[key]; ok {
			object[key] = value
		}
	}
	switch collection {
	case DeviceTypes:
		if _, ok := object["model"]; !ok {
			object["model"] = name
		}
		object["manufacturer"] = server.reference(Manufacturers, fields["manufacturer"])
	case Devices:
		object["device_type"] = server.reference(DeviceTypes, fields["device_type"])
		object["role"] = server.reference(DeviceRoles, fields["role"])
		object["site"] = server.reference(Sites, fields["site"])
	case Interfaces:
		object["device"] = server.reference(Devices, fields["device"])
		object["_occupied"] = false
		object["cable"] = nil
	case VirtualChassis:
		object["member_count"] = 0
	case VLANs:
		if _, ok := object["vid"]; !ok {
			object["vid"] = 1
		}
	case Prefixes, IPAddresses:
		object["family"] = map[string]interface{}{"value": 4, "label": "IPv4"}
	}
	return object
}

func (server *Server) reference(collection string, value interface{}) map[string]interface{} {
	id, _ := asID(value)
	return server.brief(collection, id)
}

// asID accepts decoded JSON numbers and seeded ints.
func asID(value interface{}) (int, bool) {
	switch typed := value.(type) {
	case float64:
		return int(typed), true
	case int:
		return typed, true
	}
	return 0, false
}

// Display labels for the choice values the tests use.
var labels = map[string]string{
	"active":         "Active",
	"virtual":        "Virtual",
	"other":          "Other",
	"1000base-x-sfp": "SFP (1GE)",
	"10gbase-x-sfpp": "SFP+ (10GE)",
}

func label(value string) string {
	if known, ok := labels[value]; ok {
		return known
	}
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

// splitPath returns the collection and the object ID, if any.
func splitPath(urlPath string) (string, int) {
	for _, collection := range []string{
		Manufacturers, Sites, DeviceRoles, DeviceTypes, Devices, VirtualChassis, Interfaces, VLANs, Prefixes, IPAddresses,
	} {
		if urlPath == collection {
			return collection, 0
		}
		if strings.HasPrefix(urlPath, collection) {
			id, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(urlPath, collection), "/"))
			if err == nil {
				return collection, id
			}
		}
	}
	return "", 0
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
