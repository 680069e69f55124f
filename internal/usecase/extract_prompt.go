package usecase

const extractionSystemPrompt = `You read university class timetables from photos and answer with JSON only.`

const extractionPrompt = `Read every class block in this university timetable image.

The timetable may be in English or Arabic. Days are the columns or rows (Sunday to Saturday),
time ranges are printed on the header or inside each block. A block that spans several days
is one class per day.

Return ONLY a JSON array, no commentary, no Markdown. Each element must be:
{"course_code": "CS201", "day": "Sunday", "start_time": "08:00", "end_time": "09:15"}

Rules:
- course_code: the course code exactly as printed (letters and digits), not the course title.
- day: the English day name (Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday).
- start_time / end_time: 24-hour HH:MM. Write 8.0 as 08:00 and 1.30 PM as 13:30.
- Skip breaks, empty cells and blocks without a course code.
- If the image contains no timetable, return [].`
