package gender

// nameTable maps lowercase given names to a gender. It is a compact
// embedded subset of the common international given-name datasets,
// weighted toward names that actually show up in social handles.
var nameTable = map[string]Gender{
	// Male
	"aaron": Male, "adam": Male, "adrian": Male, "ahmed": Male,
	"alan": Male, "albert": Male, "alejandro": Male, "alex": Male,
	"alexander": Male, "ali": Male, "andre": Male, "andrew": Male,
	"andy": Male, "anthony": Male, "antonio": Male, "arthur": Male,
	"austin": Male, "ben": Male, "benjamin": Male, "bill": Male,
	"billy": Male, "bob": Male, "bobby": Male, "brad": Male,
	"bradley": Male, "brandon": Male, "brian": Male, "bruce": Male,
	"bryan": Male, "caleb": Male, "carl": Male, "carlos": Male,
	"chad": Male, "charles": Male, "charlie": Male, "chris": Male,
	"christian": Male, "christopher": Male, "cody": Male, "colin": Male,
	"connor": Male, "craig": Male, "dan": Male, "daniel": Male,
	"danny": Male, "dave": Male, "david": Male, "dennis": Male,
	"derek": Male, "diego": Male, "dmitri": Male, "dominic": Male,
	"donald": Male, "douglas": Male, "dylan": Male, "eddie": Male,
	"edward": Male, "eric": Male, "erik": Male, "ethan": Male,
	"evan": Male, "felipe": Male, "fernando": Male, "frank": Male,
	"gabriel": Male, "gary": Male, "george": Male, "gerald": Male,
	"greg": Male, "gregory": Male, "harold": Male, "harry": Male,
	"hassan": Male, "henry": Male, "hugo": Male, "ian": Male,
	"ibrahim": Male, "isaac": Male, "ivan": Male, "jack": Male,
	"jacob": Male, "jake": Male, "james": Male, "jason": Male,
	"javier": Male, "jay": Male, "jeff": Male, "jeffrey": Male,
	"jeremy": Male, "jesse": Male, "jim": Male, "jimmy": Male,
	"joe": Male, "joel": Male, "john": Male, "johnny": Male,
	"jonathan": Male, "jordan": Male, "jorge": Male, "jose": Male,
	"joseph": Male, "josh": Male, "joshua": Male, "juan": Male,
	"justin": Male, "karl": Male, "keith": Male, "ken": Male,
	"kevin": Male, "kyle": Male, "larry": Male, "lawrence": Male,
	"leo": Male, "leonardo": Male, "liam": Male, "logan": Male,
	"louis": Male, "lucas": Male, "luis": Male, "luke": Male,
	"marco": Male, "marcus": Male, "mario": Male, "mark": Male,
	"martin": Male, "mason": Male, "matt": Male, "matthew": Male,
	"max": Male, "michael": Male, "miguel": Male, "mike": Male,
	"mohamed": Male, "mohammed": Male, "nathan": Male, "nick": Male,
	"nicholas": Male, "noah": Male, "oliver": Male, "omar": Male,
	"oscar": Male, "patrick": Male, "paul": Male, "pedro": Male,
	"peter": Male, "philip": Male, "rafael": Male, "ralph": Male,
	"randy": Male, "raymond": Male, "ricardo": Male, "richard": Male,
	"rick": Male, "rob": Male, "robert": Male, "roberto": Male,
	"roger": Male, "ron": Male, "ronald": Male, "roy": Male,
	"russell": Male, "ryan": Male, "sam": Male, "samuel": Male,
	"scott": Male, "sean": Male, "sergio": Male, "seth": Male,
	"shane": Male, "shawn": Male, "simon": Male, "stephen": Male,
	"steve": Male, "steven": Male, "stuart": Male, "terry": Male,
	"thomas": Male, "tim": Male, "timothy": Male, "todd": Male,
	"tom": Male, "tommy": Male, "tony": Male, "travis": Male,
	"trevor": Male, "tyler": Male, "victor": Male, "vincent": Male,
	"walter": Male, "wayne": Male, "will": Male, "william": Male,
	"zachary": Male, "zach": Male,

	// Female
	"abigail": Female, "ada": Female, "adriana": Female, "aisha": Female,
	"alejandra": Female, "alexandra": Female, "alexis": Female,
	"alice": Female, "alicia": Female, "alyssa": Female, "amanda": Female,
	"amber": Female, "amelia": Female, "amy": Female, "ana": Female,
	"andrea": Female, "angela": Female, "angelina": Female, "anita": Female,
	"ann": Female, "anna": Female, "anne": Female, "annie": Female,
	"april": Female, "ariana": Female, "ashley": Female, "audrey": Female,
	"aurora": Female, "ava": Female, "barbara": Female, "beatriz": Female,
	"becky": Female, "bella": Female, "beth": Female, "bianca": Female,
	"brenda": Female, "briana": Female, "brittany": Female, "brooke": Female,
	"camila": Female, "carla": Female, "carmen": Female, "carol": Female,
	"carolina": Female, "caroline": Female, "carrie": Female,
	"catherine": Female, "cathy": Female, "charlotte": Female,
	"chelsea": Female, "cheryl": Female, "chloe": Female, "christina": Female,
	"christine": Female, "cindy": Female, "claire": Female, "clara": Female,
	"claudia": Female, "courtney": Female, "crystal": Female, "cynthia": Female,
	"daniela": Female, "danielle": Female, "dawn": Female, "debbie": Female,
	"deborah": Female, "denise": Female, "diana": Female, "diane": Female,
	"donna": Female, "dorothy": Female, "elena": Female, "elizabeth": Female,
	"ella": Female, "ellen": Female, "emily": Female, "emma": Female,
	"erica": Female, "erin": Female, "eva": Female, "evelyn": Female,
	"fatima": Female, "fernanda": Female, "fiona": Female, "frances": Female,
	"gabriela": Female, "gabrielle": Female, "gina": Female, "giulia": Female,
	"gloria": Female, "grace": Female, "hannah": Female, "heather": Female,
	"helen": Female, "holly": Female, "irene": Female, "iris": Female,
	"isabel": Female, "isabella": Female, "jackie": Female, "jacqueline": Female,
	"jade": Female, "jamie": Female, "jane": Female, "janet": Female,
	"janice": Female, "jasmine": Female, "jean": Female, "jenna": Female,
	"jennifer": Female, "jenny": Female, "jessica": Female, "jill": Female,
	"joan": Female, "joanna": Female, "jocelyn": Female, "joyce": Female,
	"judith": Female, "judy": Female, "julia": Female, "julie": Female,
	"karen": Female, "kate": Female, "katherine": Female, "kathleen": Female,
	"kathryn": Female, "kathy": Female, "katie": Female, "kayla": Female,
	"kelly": Female, "kim": Female, "kimberly": Female, "kristen": Female,
	"kristin": Female, "kylie": Female, "laura": Female, "lauren": Female,
	"layla": Female, "leah": Female, "leslie": Female, "lily": Female,
	"linda": Female, "lisa": Female, "lori": Female, "lucia": Female,
	"lucy": Female, "luna": Female, "madison": Female, "maggie": Female,
	"maria": Female, "mariana": Female, "marie": Female, "marilyn": Female,
	"marina": Female, "martha": Female, "mary": Female, "maya": Female,
	"megan": Female, "melanie": Female, "melissa": Female, "mia": Female,
	"michelle": Female, "mila": Female, "molly": Female, "monica": Female,
	"nancy": Female, "naomi": Female, "natalia": Female, "natalie": Female,
	"natasha": Female, "nicole": Female, "nina": Female, "nora": Female,
	"olivia": Female, "paige": Female, "pamela": Female, "patricia": Female,
	"paula": Female, "peggy": Female, "penelope": Female, "priya": Female,
	"rachel": Female, "rebecca": Female, "renee": Female, "rita": Female,
	"rosa": Female, "rose": Female, "ruby": Female, "ruth": Female,
	"sabrina": Female, "sally": Female, "samantha": Female, "sandra": Female,
	"sara": Female, "sarah": Female, "savannah": Female, "selena": Female,
	"sharon": Female, "sheila": Female, "shirley": Female, "sofia": Female,
	"sonia": Female, "sophia": Female, "sophie": Female, "stacy": Female,
	"stella": Female, "stephanie": Female, "sue": Female, "susan": Female,
	"sylvia": Female, "tamara": Female, "tanya": Female, "tara": Female,
	"teresa": Female, "tiffany": Female, "tina": Female, "tracy": Female,
	"valentina": Female, "valeria": Female, "valerie": Female,
	"vanessa": Female, "veronica": Female, "victoria": Female,
	"violet": Female, "virginia": Female, "vivian": Female, "wendy": Female,
	"yolanda": Female, "zoe": Female,
}
