package access

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ErrAccessDenied is returned when a role may not enter a screen
var ErrAccessDenied = errors.New("you don't have permission to access this page")

// Screen names a navigable destination
type Screen string

// Base screens
const (
	Root     Screen = "Root"
	Home     Screen = "Home"
	Profile  Screen = "Profile"
	Account  Screen = "Account"
	Password Screen = "Password"
	Language Screen = "Language"
	Help     Screen = "Help"
	About    Screen = "About"
	Locate   Screen = "Locate"
)

// Order screens
const (
	Plus              Screen = "Plus"
	OrdersPage        Screen = "OrdersPage"
	NewOrdersPage     Screen = "NewOrdersPage"
	OrderDetails      Screen = "OrderDetails"
	CheckoutCartPage  Screen = "CheckoutCartPage"
	ProductDetails    Screen = "ProductDetails"
	CheckoutOrderPage Screen = "CheckoutOrderPage"
	Pay               Screen = "Pay"
)

// Management screens
const (
	Analytics        Screen = "Analytics"
	Notifications    Screen = "Notifications"
	OnboardPage      Screen = "OnboardPage"
	Menu             Screen = "Menu"
	ReportingPage    Screen = "ReportingPage"
	RatingPage       Screen = "RatingPage"
	BroadcastPage    Screen = "BroadcastPage"
	ReservationsPage Screen = "ReservationsPage"
	Ratings          Screen = "Ratings"
)

var (
	baseAccess = []Screen{Root, Home, Profile, Account, Password, Language, Help, About, Locate}

	orderAccess = []Screen{
		Plus, OrdersPage, NewOrdersPage, OrderDetails,
		CheckoutCartPage, ProductDetails, CheckoutOrderPage, Pay,
	}

	managementAccess = []Screen{
		Analytics, Notifications, OnboardPage, Menu, ReportingPage,
		RatingPage, BroadcastPage, ReservationsPage, Ratings,
	}

	limitedScreens = screenSet(baseAccess, orderAccess)
	fullScreens    = screenSet(baseAccess, orderAccess, managementAccess)

	// policy maps a folded role name to its screens
	policy = map[string]map[Screen]struct{}{
		"chef":    limitedScreens,
		"rider":   limitedScreens,
		"cashier": fullScreens,
		"manager": fullScreens,
		"waiter":  fullScreens,
		"barista": fullScreens,
		"barman":  fullScreens,
	}
)

func screenSet(groups ...[]Screen) map[Screen]struct{} {
	set := make(map[Screen]struct{})
	for _, g := range groups {
		for _, s := range g {
			set[s] = struct{}{}
		}
	}
	return set
}

func lookup(role string) map[Screen]struct{} {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil
	}
	return policy[cases.Fold().String(role)]
}

// AllowedScreens returns every screen the role may enter, sorted by name.
// Unknown roles get nothing.
func AllowedScreens(role string) []Screen {
	set := lookup(role)
	out := make([]Screen, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasAccess reports whether the role may enter the screen
func HasAccess(role string, screen Screen) bool {
	if screen == "" {
		return false
	}
	_, ok := lookup(role)[screen]
	return ok
}

// FilterTabs keeps the navigation entries the role may see, in their original order
func FilterTabs(role string, tabs []Screen) []Screen {
	out := make([]Screen, 0, len(tabs))
	for _, t := range tabs {
		if HasAccess(role, t) {
			out = append(out, t)
		}
	}
	return out
}

// Guard is evaluated on screen entry
func Guard(role string, screen Screen) error {
	if !HasAccess(role, screen) {
		return fmt.Errorf("role %q on %s: %w", role, screen, ErrAccessDenied)
	}
	return nil
}

// Roles lists the roles known to the policy
func Roles() []string {
	out := make([]string, 0, len(policy))
	for r := range policy {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
