package notice

import "regexp"

// Keyword tables for the classification cascade. Order inside each table is
// load-bearing only for vessel-name extraction (longest contained name
// wins); containment checks are order-insensitive.
var (
	// Freight shipping operators, as they sign their messages.
	VesselOperators = []string{
		"금광해운",
		"대저해운",
		"대저해운 도착시간",
		"에이치해운",
		"미래해운",
		"우성해운",
		"주식회사태성해운",
		"태성해운 도착시간",
		"한국해운",
	}

	// Freight vessel names.
	VesselNames = []string{
		"금광11호",
		"미래15호",
	}

	// Passenger ferry operators.
	PassengerOperators = []string{
		"대저페리",
		"썬라이즈 도착시간",
		"씨스포빌",
		"씨스포빌 도착시간",
		"울릉크루즈",
		"제이에이치페리",
		"제이에이치페리 도착시간",
	}

	// Passenger vessel names. 뉴씨다오펄호/뉴시다오펄호 are the same ship,
	// spelled both ways in the feed.
	PassengerVessels = []string{
		"씨스타11호",
		"씨스타1호",
		"씨스타5호",
		"뉴씨다오펄호",
		"뉴시다오펄호",
		"썬라이즈호",
		"퀸스타2호",
	}

	PassengerTerms = []string{"탑승인원", "여객", "승객", "승선", "크루즈"}
	CargoTerms     = []string{"화물", "차량", "선적", "택배", "물류"}

	CancelKeywords     = []string{"결항", "취소", "출항 취소", "운항 취소"}
	ControlKeywords    = []string{"운항 통제", "운항통제", "운항이 통제", "통제되었습니다"}
	TimeChangeKeywords = []string{"시간 변경", "시간변경", "시간 변경된", "시간변경된"}

	ArrivalKeywords = []string{
		"입항",
		"입항 예정",
		"입항 예정시간",
		"입항입니다",
		"도착",
		"도착시간",
	}

	DepartureKeywords = []string{
		"출항",
		"출발",
		"운항예정",
		"운항 예정",
		"정상운항",
		"운항합니다",
		"출항 예정",
		"정상출항",
		"출항합니다",
		"출발합니다",
	}
)

// Route direction patterns. The first of each pair is the broad form, the
// second the fully parenthesized port names some operators use.
var (
	arrivalRoutePatterns = []*regexp.Regexp{
		regexp.MustCompile(`포항.*?(→|->|➡|>).*?울릉`),
		regexp.MustCompile(`포항\(영일만항\).*?→.*?울릉\(사동항\)`),
	}

	departureRoutePatterns = []*regexp.Regexp{
		regexp.MustCompile(`울릉.*?(→|->|➡|>).*?포항`),
		regexp.MustCompile(`울릉\(사동항\).*?→.*?포항\(영일만항\)`),
	}

	// Inbound route with optional quoting, e.g. `"포항" → 울릉`.
	quotedInboundPattern = regexp.MustCompile(`["'“”]?\s*포항\s*["'“”]?\s*(?:→|->|➡|>)\s*울릉`)

	// 10:30 or 10시30 style times inside message text.
	noticeTimePattern = regexp.MustCompile(`(\d{1,2})[:시](\d{2})`)
)

// shuttleMarker flags shuttle bus notices, a distinct message type that
// reuses ferry vocabulary.
const shuttleMarker = "셔틀"
