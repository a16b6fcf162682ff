package cities

import (
	"sort"
	"strings"

	"rastreioBack/internal/tracking/geoutil"
)

// Location is a resolved city with WGS84 coordinates. Immutable once resolved.
type Location struct {
	City  string
	State string
	Lat   float64
	Lng   float64
}

// directRouteThresholdKM is the distance under which no intermediate hubs are used.
const directRouteThresholdKM = 150.0

// maxDetourRatio limits how far off the direct path a hub may sit:
// d(origin,hub) + d(hub,destination) must not exceed direct * (1 + ratio).
const maxDetourRatio = 0.25

// hubs lists the major regional logistics centers used as intermediate waypoints.
var hubs = []Location{
	{"São Paulo", "SP", -23.5505, -46.6333},
	{"Campinas", "SP", -22.9099, -47.0626},
	{"Ribeirão Preto", "SP", -21.1775, -47.8103},
	{"Rio de Janeiro", "RJ", -22.9068, -43.1729},
	{"Belo Horizonte", "MG", -19.9167, -43.9345},
	{"Uberlândia", "MG", -18.9186, -48.2772},
	{"Vitória", "ES", -20.3155, -40.3128},
	{"Brasília", "DF", -15.7939, -47.8828},
	{"Goiânia", "GO", -16.6869, -49.2648},
	{"Palmas", "TO", -10.2491, -48.3243},
	{"Curitiba", "PR", -25.4284, -49.2733},
	{"Londrina", "PR", -23.3045, -51.1696},
	{"Florianópolis", "SC", -27.5954, -48.5480},
	{"Porto Alegre", "RS", -30.0346, -51.2177},
	{"Campo Grande", "MS", -20.4697, -54.6201},
	{"Cuiabá", "MT", -15.6014, -56.0979},
	{"Salvador", "BA", -12.9777, -38.5016},
	{"Recife", "PE", -8.0476, -34.8770},
	{"Fortaleza", "CE", -3.7319, -38.5267},
	{"Natal", "RN", -5.7945, -35.2110},
	{"São Luís", "MA", -2.5307, -44.3068},
	{"Teresina", "PI", -5.0892, -42.8019},
	{"Belém", "PA", -1.4558, -48.4902},
	{"Manaus", "AM", -3.1190, -60.0217},
	{"Porto Velho", "RO", -8.7612, -63.9004},
}

// stateFallbacks maps a state code to its capital coordinates, used when a
// destination city is not in the hub table and no coordinates were provided.
var stateFallbacks = map[string]Location{
	"AC": {"Rio Branco", "AC", -9.9754, -67.8249},
	"AL": {"Maceió", "AL", -9.6498, -35.7089},
	"AP": {"Macapá", "AP", 0.0349, -51.0694},
	"AM": {"Manaus", "AM", -3.1190, -60.0217},
	"BA": {"Salvador", "BA", -12.9777, -38.5016},
	"CE": {"Fortaleza", "CE", -3.7319, -38.5267},
	"DF": {"Brasília", "DF", -15.7939, -47.8828},
	"ES": {"Vitória", "ES", -20.3155, -40.3128},
	"GO": {"Goiânia", "GO", -16.6869, -49.2648},
	"MA": {"São Luís", "MA", -2.5307, -44.3068},
	"MT": {"Cuiabá", "MT", -15.6014, -56.0979},
	"MS": {"Campo Grande", "MS", -20.4697, -54.6201},
	"MG": {"Belo Horizonte", "MG", -19.9167, -43.9345},
	"PA": {"Belém", "PA", -1.4558, -48.4902},
	"PB": {"João Pessoa", "PB", -7.1195, -34.8450},
	"PR": {"Curitiba", "PR", -25.4284, -49.2733},
	"PE": {"Recife", "PE", -8.0476, -34.8770},
	"PI": {"Teresina", "PI", -5.0892, -42.8019},
	"RJ": {"Rio de Janeiro", "RJ", -22.9068, -43.1729},
	"RN": {"Natal", "RN", -5.7945, -35.2110},
	"RS": {"Porto Alegre", "RS", -30.0346, -51.2177},
	"RO": {"Porto Velho", "RO", -8.7612, -63.9004},
	"RR": {"Boa Vista", "RR", 2.8235, -60.6758},
	"SC": {"Florianópolis", "SC", -27.5954, -48.5480},
	"SP": {"São Paulo", "SP", -23.5505, -46.6333},
	"SE": {"Aracaju", "SE", -10.9472, -37.0731},
	"TO": {"Palmas", "TO", -10.2491, -48.3243},
}

// countryCentroid is the last-resort coordinate when even the state is unknown.
var countryCentroid = Location{City: "Brasília", State: "DF", Lat: -15.7939, Lng: -47.8828}

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c",
)

func normalize(s string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Hubs returns a copy of the hub table.
func Hubs() []Location {
	out := make([]Location, len(hubs))
	copy(out, hubs)
	return out
}

// Lookup finds a hub city by normalized name and state.
func Lookup(city, state string) (Location, bool) {
	nc := normalize(city)
	ns := strings.ToUpper(strings.TrimSpace(state))
	for _, h := range hubs {
		if normalize(h.City) == nc && h.State == ns {
			return h, true
		}
	}
	return Location{}, false
}

// Fallback synthesizes a location for an unknown city. The coordinates come
// from the state capital, or the country centroid when the state is unknown.
// Resolution never fails: some plausible coordinate is always produced.
func Fallback(city, state string) Location {
	ns := strings.ToUpper(strings.TrimSpace(state))
	base, ok := stateFallbacks[ns]
	if !ok {
		base = countryCentroid
		ns = base.State
	}
	name := strings.TrimSpace(city)
	if name == "" {
		name = base.City
	}
	return Location{City: name, State: ns, Lat: base.Lat, Lng: base.Lng}
}

// Resolve returns a canonical location for city+state. Known hub cities win;
// otherwise provided coordinates are trusted, and failing that the state
// fallback applies.
func Resolve(city, state string, lat, lng *float64) Location {
	if loc, ok := Lookup(city, state); ok {
		return loc
	}
	if lat != nil && lng != nil && validCoords(*lat, *lng) {
		return Location{
			City:  strings.TrimSpace(city),
			State: strings.ToUpper(strings.TrimSpace(state)),
			Lat:   *lat,
			Lng:   *lng,
		}
	}
	return Fallback(city, state)
}

func validCoords(lat, lng float64) bool {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return false
	}
	// Near-zero pairs are treated as unset.
	return lat != 0 || lng != 0
}

// MaxHopsFor returns how many intermediate hubs a route of the given length
// may use. Short routes go direct; hop count grows with distance, capped at 5.
func MaxHopsFor(distanceKM float64) int {
	if distanceKM < directRouteThresholdKM {
		return 0
	}
	hops := 1 + int(distanceKM/600)
	if hops > 5 {
		hops = 5
	}
	return hops
}

type hubCandidate struct {
	loc        Location
	detourKM   float64
	fromOrigin float64
}

// HubsBetween selects up to maxHops hub cities lying approximately along the
// direct path between origin and destination, ordered by distance from the
// origin. Hubs near either endpoint are excluded. Candidates are ranked by the
// extra distance they add over the direct path; ties break on city name so the
// selection is deterministic.
func HubsBetween(origin, destination Location, maxHops int) []Location {
	if maxHops <= 0 {
		return nil
	}
	direct := geoutil.DistanceKM(origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	if direct < directRouteThresholdKM {
		return nil
	}

	candidates := make([]hubCandidate, 0, len(hubs))
	for _, h := range hubs {
		dFromOrigin := geoutil.DistanceKM(origin.Lat, origin.Lng, h.Lat, h.Lng)
		dToDest := geoutil.DistanceKM(h.Lat, h.Lng, destination.Lat, destination.Lng)
		if dFromOrigin < directRouteThresholdKM || dToDest < directRouteThresholdKM {
			continue
		}
		detour := dFromOrigin + dToDest - direct
		if detour > direct*maxDetourRatio {
			continue
		}
		candidates = append(candidates, hubCandidate{loc: h, detourKM: detour, fromOrigin: dFromOrigin})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].detourKM != candidates[j].detourKM {
			return candidates[i].detourKM < candidates[j].detourKM
		}
		return candidates[i].loc.City < candidates[j].loc.City
	})
	if len(candidates) > maxHops {
		candidates = candidates[:maxHops]
	}

	// Walk order follows distance from the origin.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].fromOrigin < candidates[j].fromOrigin
	})

	out := make([]Location, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.loc)
	}
	return out
}
